// Package slug derives the canonical identity keys used for drivers and teams.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug lowercases s and collapses every run of characters that are not
// letters or digits into a single hyphen, trimming hyphens at both ends.
// Accented letters are kept, so "Pérez" and "Perez" differ.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingHyphen := false

	for _, r := range norm.NFC.String(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}

			pendingHyphen = false

			b.WriteRune(unicode.ToLower(r))

			continue
		}

		pendingHyphen = true
	}

	return b.String()
}

// ASCII is Slug after folding accents away: "Nico Hülkenberg" becomes
// "nico-hulkenberg".
func ASCII(s string) string {
	return Slug(Fold(s))
}

// Fold strips combining marks after canonical decomposition. Letters without
// a decomposition (ø, ł, ß) pass through unchanged.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMark), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}

// Name joins given and family names the way identity keys expect.
func Name(given, family string) string {
	return strings.Join(strings.Fields(given+" "+family), " ")
}

// Matches reports whether two labels share a slug, or one slug contains the
// other. Empty labels never match.
func Matches(a, b string) bool {
	sa, sb := ASCII(a), ASCII(b)
	if sa == "" || sb == "" {
		return false
	}

	return sa == sb || strings.Contains(sa, sb) || strings.Contains(sb, sa)
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
