package models

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Points is a championship points value. Race points are frequently fractional
// (half-points races, sprint formats of the past), so values are kept as exact
// decimals and emitted as JSON integers whenever they reduce to one.
type Points struct {
	decimal.Decimal
}

// NewPoints returns an integral points value.
func NewPoints(n int64) Points {
	return Points{decimal.NewFromInt(n)}
}

// ParsePoints parses "25", "12.5" or "" (zero).
func ParsePoints(s string) (Points, error) {
	if s == "" {
		return Points{}, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Points{}, fmt.Errorf("invalid points %q: %w", s, err)
	}

	return Points{d}, nil
}

// MustPoints is ParsePoints for literals known to be valid.
func MustPoints(s string) Points {
	p, err := ParsePoints(s)
	if err != nil {
		panic(err)
	}

	return p
}

// Add returns p + q.
func (p Points) Add(q Points) Points {
	return Points{p.Decimal.Add(q.Decimal)}
}

// IsZero reports whether the value is zero.
func (p Points) IsZero() bool {
	return p.Decimal.IsZero()
}

// Equal compares numerically, so 25 == 25.0.
func (p Points) Equal(q Points) bool {
	return p.Decimal.Equal(q.Decimal)
}

// String renders the normalized form: "25" for integral values, "12.5" otherwise.
func (p Points) String() string {
	if p.Decimal.IsInteger() {
		return strconv.FormatInt(p.Decimal.IntPart(), 10)
	}

	return p.Decimal.String()
}

// MarshalJSON emits a bare JSON number.
func (p Points) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (p *Points) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Points{}
		return nil
	}

	if len(data) > 1 && data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("invalid points %s: %w", data, err)
		}

		data = []byte(unquoted)
	}

	parsed, err := ParsePoints(string(data))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
