package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1stats/internal/models"
	"f1stats/internal/storage"
)

const rosterJSON = `{
  // two seats are enough here
  "season": 2026,
  "teams": [
    {
      "name": "McLaren",
      "drivers": [
        {"name": "Lando Norris"},
        {"name": "Oscar Piastri"},
      ],
    },
  ],
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()

	return out.String(), err
}

// dataDir writes a roster and a statistics document holding drivers.
func dataDir(t *testing.T, drivers ...string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entries-2026.json"), []byte(rosterJSON), 0644))

	doc := models.NewStatsDocument([]int{2025})
	for i, d := range drivers {
		rec := doc.Driver(d)
		rec.BySeason["2025"] = models.ZeroDriverSeason("mclaren")
		rec.BySeason["2025"].Points = models.PointsPtr(models.NewPoints(int64(400 - i*50)))
		rec.BySeason["2025"].Position = models.IntPtr(i + 1)
		rec.RecomputeAllTime()
	}

	require.NoError(t, storage.WriteJSON(filepath.Join(dir, "stats.json"), doc))

	return dir
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "f1stats", cmd.Use)
	assert.True(t, cmd.SilenceUsage)

	for _, name := range []string{"fetch", "reconcile", "validate", "check", "pipeline", "championships", "junior", "standings", "config"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "log-level", "log-format", "data-dir"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	cases := map[string][]string{
		"fetch":     {"season", "offline", "output"},
		"reconcile": {"input", "output"},
		"validate":  {"input", "output", "markdown", "strict"},
		"pipeline":  {"season", "offline", "junior"},
		"junior":    {"input", "min-debut"},
		"standings": {"season", "input"},
	}

	for name, flags := range cases {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)

		for _, f := range flags {
			assert.NotNil(t, sub.Flags().Lookup(f), "%s --%s", name, f)
		}
	}

	fetch, _, err := cmd.Find([]string{"fetch"})
	require.NoError(t, err)
	assert.Equal(t, "s", fetch.Flags().Lookup("season").Shorthand)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")

	require.NoError(t, os.WriteFile(good, []byte(`{"a": 1}`), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("{\n  \"a\": 1,\n  \"b\": x\n}\n"), 0644))

	out, err := execute(t, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "OK: "+good)

	out, err = execute(t, "check", bad)
	require.ErrorIs(t, err, ErrInvalidJSON)
	assert.Contains(t, out, "->    3:")
}

func TestCheck_DefaultsToStats(t *testing.T) {
	dir := dataDir(t, "lando-norris")

	out, err := execute(t, "--data-dir", dir, "check")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "stats.json"))
}

func TestValidate(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		dir := dataDir(t, "lando-norris", "oscar-piastri")

		out, err := execute(t, "--data-dir", dir, "validate", "--strict")
		require.NoError(t, err)
		assert.Contains(t, out, "No discrepancies")
		assert.FileExists(t, filepath.Join(dir, "stats-validation-report.json"))
	})

	t.Run("advisory", func(t *testing.T) {
		dir := dataDir(t, "lando-norris")

		out, err := execute(t, "--data-dir", dir, "validate", "--markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "1 missing in stats")
		assert.Contains(t, out, "## Missing in statistics")
		assert.Contains(t, out, "oscar-piastri")
	})

	t.Run("strict", func(t *testing.T) {
		dir := dataDir(t, "lando-norris")

		_, err := execute(t, "--data-dir", dir, "validate", "--strict")
		require.ErrorIs(t, err, ErrDiscrepancies)

		var report struct {
			Summary struct {
				MissingInStats int `json:"missingInStats"`
			} `json:"summary"`
		}
		require.NoError(t, storage.ReadJSON(filepath.Join(dir, "stats-validation-report.json"), &report))
		assert.Equal(t, 1, report.Summary.MissingInStats)
	})
}

func TestReconcile(t *testing.T) {
	dir := dataDir(t, "lando-norris")

	out, err := execute(t, "--data-dir", dir, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "Backup:")

	fixed, err := storage.LoadStats(filepath.Join(dir, "stats.fixed.json"))
	require.NoError(t, err)
	require.Contains(t, fixed.DriverStats, "oscar-piastri")
	assert.NotNil(t, fixed.DriverStats["oscar-piastri"].BySeason["2025"])

	backups, err := storage.Backups(filepath.Join(dir, "stats.json"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestStandings(t *testing.T) {
	dir := dataDir(t, "lando-norris", "oscar-piastri")

	out, err := execute(t, "--data-dir", dir, "standings")
	require.NoError(t, err)
	assert.Contains(t, out, "Season 2025")
	assert.Less(t, bytes.Index([]byte(out), []byte("lando-norris")), bytes.Index([]byte(out), []byte("oscar-piastri")))
}

func TestChampionships(t *testing.T) {
	dir := dataDir(t, "lando-norris")
	path := filepath.Join(dir, "stats.json")

	doc, err := storage.LoadStats(path)
	require.NoError(t, err)

	doc.DriverStats["lando-norris"].CareerSummary = []models.CareerRow{
		{Season: "2025", Series: "Formula One World Championship", Team: "McLaren", Position: "1st"},
	}
	require.NoError(t, storage.WriteJSON(path, doc))

	out, err := execute(t, "--data-dir", dir, "championships")
	require.NoError(t, err)
	assert.Contains(t, out, "lando-norris")

	updated, err := storage.LoadStats(path)
	require.NoError(t, err)
	require.NotNil(t, updated.DriverStats["lando-norris"].AllTime.Championships)
	assert.Equal(t, 1, *updated.DriverStats["lando-norris"].AllTime.Championships)

	out, err = execute(t, "--data-dir", dir, "championships")
	require.NoError(t, err)
	assert.Contains(t, out, "No changes")
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "f1stats.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)

	_, err = execute(t, "config", "init", "--force", path)
	require.NoError(t, err)

	out, err = execute(t, "--config", path, "--log-level", "debug", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: https://api.jolpi.ca/ergast/f1")
	assert.Contains(t, out, "level: debug")
}

func TestInvalidOverride(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "config", "show")
	require.Error(t, err)
}

func TestNewStageCommand(t *testing.T) {
	dir := dataDir(t, "lando-norris", "oscar-piastri")

	var out bytes.Buffer

	cmd := NewStageCommand("validate", []string{"--data-dir", dir, "--strict"})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "validate", cmd.Name())
	assert.Contains(t, out.String(), "No discrepancies")

	cmd = NewStageCommand("reconcile", []string{"--data-dir", dir, "--output", filepath.Join(dir, "out.json")})
	cmd.SetOut(io.Discard)
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, "out.json"))
}
