// Package pipeline runs the f1stats stages in order and merges their outputs
// into the canonical statistics document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"f1stats/internal/aggregator"
	"f1stats/internal/career"
	"f1stats/internal/ergast"
	"f1stats/internal/logger"
	"f1stats/internal/models"
	"f1stats/internal/reconciler"
	"f1stats/internal/storage"
	"f1stats/internal/validator"
	"f1stats/pkg/utils"
)

// Stage names.
const (
	StageFetch         = "fetch"
	StageJunior        = "junior"
	StageReconcile     = "reconcile"
	StageValidate      = "validate"
	StageMerge         = "merge"
	StageChampionships = "championships"
)

// summaryErrorWidth caps a failed stage's error in the summary block.
const summaryErrorWidth = 120

// Pipeline errors.
var (
	ErrNoData     = errors.New("no season returned any data")
	ErrNoDocument = errors.New("no statistics document available")
)

// Collector gathers raw season data.
type Collector interface {
	Collect(ctx context.Context, seasons []int) []*ergast.SeasonData
}

// JuniorLookup attaches feeder-series history to a document.
type JuniorLookup interface {
	Run(ctx context.Context, doc *models.StatsDocument, names map[string]string) (*models.StatsDocument, map[string]career.JuniorResult, error)
}

// Paths names every file the pipeline reads or writes.
type Paths struct {
	Stats     string
	Generated string
	Fixed     string
	Roster    string
	Report    string
	Career    string
	Junior    string
}

// Deps are the stage implementations.
type Deps struct {
	Collector  Collector
	Aggregator *aggregator.Aggregator
	Reconciler *reconciler.Reconciler
	Validator  *validator.Validator
	// Juniors is optional; nil skips the junior stage.
	Juniors JuniorLookup
}

// StageResult records how one stage went.
type StageResult struct {
	Name     string
	Err      error
	Duration time.Duration
	Output   string
}

// OK reports whether the stage succeeded.
func (s StageResult) OK() bool { return s.Err == nil }

// Result summarizes a run.
type Result struct {
	RunID         string
	Stages        []StageResult
	Final         string
	Backup        string
	Changes       *reconciler.Changes
	Report        *validator.Report
	Championships []string
}

// Failed lists the stages that did not succeed.
func (r *Result) Failed() []StageResult {
	var out []StageResult

	for _, s := range r.Stages {
		if !s.OK() {
			out = append(out, s)
		}
	}

	return out
}

// AllFailed reports whether no stage succeeded.
func (r *Result) AllFailed() bool {
	return len(r.Stages) > 0 && len(r.Failed()) == len(r.Stages)
}

// Pipeline runs fetch, reconcile, validate, then merges into the final document.
type Pipeline struct {
	deps    Deps
	paths   Paths
	seasons []int
	log     *logger.Logger
	out     io.Writer
	text    *utils.StringHelper
}

// New creates a pipeline. Progress lines go to out; a nil out discards them.
func New(deps Deps, paths Paths, seasons []int, log *logger.Logger, out io.Writer) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}

	if out == nil {
		out = io.Discard
	}

	return &Pipeline{deps: deps, paths: paths, seasons: seasons, log: log, out: out, text: utils.NewStringHelper()}
}

// run holds the documents produced so far.
type run struct {
	generated  *models.StatsDocument
	reconciled *models.StatsDocument
	final      *models.StatsDocument
}

// Run executes every stage. Stage failures are logged and recorded; later
// stages fall back to files on disk. Only a cancelled context stops the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := p.log.With("run", res.RunID)
	state := &run{}
	start := time.Now()

	fmt.Fprintf(p.out, "🚀 Starting f1stats pipeline (run %s)\n", res.RunID)
	fmt.Fprintf(p.out, "📅 Seasons: %v\n", p.seasons)

	stages := []struct {
		name string
		fn   func(context.Context, *logger.Logger, *run, *Result) (string, error)
	}{
		{StageFetch, p.fetch},
		{StageJunior, p.junior},
		{StageReconcile, p.reconcile},
		{StageValidate, p.validate},
		{StageMerge, p.merge},
		{StageChampionships, p.championships},
	}

	phase := 0

	for _, st := range stages {
		if st.name == StageJunior && p.deps.Juniors == nil {
			continue
		}

		if err := ctx.Err(); err != nil {
			return res, err
		}

		phase++
		fmt.Fprintf(p.out, "\nPhase %d: %s...\n", phase, st.name)

		stageStart := time.Now()
		output, err := st.fn(ctx, log.With("stage", st.name), state, res)
		sr := StageResult{Name: st.name, Err: err, Duration: time.Since(stageStart), Output: output}
		res.Stages = append(res.Stages, sr)

		if err != nil {
			log.Error("stage failed", "stage", st.name, "error", err)
			fmt.Fprintf(p.out, "❌ %s failed: %v\n", st.name, err)

			if ctx.Err() != nil {
				return res, ctx.Err()
			}

			continue
		}

		log.Info("stage done", "stage", st.name, "duration", sr.Duration)

		if output != "" {
			fmt.Fprintf(p.out, "✅ %s done in %v → %s\n", st.name, sr.Duration.Round(time.Millisecond), output)
		} else {
			fmt.Fprintf(p.out, "✅ %s done in %v\n", st.name, sr.Duration.Round(time.Millisecond))
		}
	}

	p.summary(res, time.Since(start))

	return res, nil
}

func (p *Pipeline) fetch(ctx context.Context, log *logger.Logger, state *run, _ *Result) (string, error) {
	collected := p.deps.Collector.Collect(ctx, p.seasons)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	usable := 0

	for _, data := range collected {
		if len(data.Failures) < len(ergast.AllEndpoints) {
			usable++
		}
	}

	if usable == 0 {
		return "", ErrNoData
	}

	// fold into the current document so careers, titles and unknown members survive
	base, err := storage.LoadStats(p.paths.Stats)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Info("no existing document, starting fresh", "path", p.paths.Stats)
		base = nil
	case err != nil:
		return "", fmt.Errorf("failed to load %s: %w", p.paths.Stats, err)
	}

	doc := p.deps.Aggregator.BuildOnto(base, p.seasons, collected)
	if err := storage.WriteJSON(p.paths.Generated, doc); err != nil {
		return "", err
	}

	state.generated = doc
	log.Info("generated document written", "path", p.paths.Generated, "drivers", len(doc.DriverStats), "teams", len(doc.TeamStats))

	return p.paths.Generated, nil
}

func (p *Pipeline) junior(ctx context.Context, log *logger.Logger, state *run, _ *Result) (string, error) {
	doc, err := p.input(state.generated, p.paths.Generated)
	if err != nil {
		return "", err
	}

	names := map[string]string{}

	if roster, rerr := storage.LoadRoster(p.paths.Roster); rerr == nil {
		for s, e := range roster.ByDriverSlug() {
			names[s] = e.Driver.Name
		}
	} else {
		log.Warn("roster unavailable, searching by slug", "error", rerr)
	}

	updated, results, err := p.deps.Juniors.Run(ctx, doc, names)
	if err != nil {
		return "", err
	}

	if err := storage.WriteJSON(p.paths.Junior, results); err != nil {
		return "", err
	}

	if err := storage.WriteJSON(p.paths.Generated, updated); err != nil {
		return "", err
	}

	state.generated = updated

	return p.paths.Junior, nil
}

func (p *Pipeline) reconcile(_ context.Context, log *logger.Logger, state *run, res *Result) (string, error) {
	doc, err := p.input(state.generated, p.paths.Stats)
	if err != nil {
		return "", err
	}

	roster, err := storage.LoadRoster(p.paths.Roster)
	if err != nil {
		return "", err
	}

	bak, err := storage.Backup(p.paths.Stats)
	if err != nil {
		return "", err
	}

	if bak != "" {
		res.Backup = bak
		fmt.Fprintf(p.out, "💾 Backup: %s\n", bak)
	}

	fixed, changes := p.deps.Reconciler.Reconcile(doc, roster)
	if err := storage.WriteJSON(p.paths.Fixed, fixed); err != nil {
		return "", err
	}

	state.reconciled = fixed
	res.Changes = &changes

	log.Info("reconciled document written", "path", p.paths.Fixed, "changes", changes.String())
	fmt.Fprintf(p.out, "🔧 %s\n", changes)

	return p.paths.Fixed, nil
}

func (p *Pipeline) validate(_ context.Context, log *logger.Logger, state *run, res *Result) (string, error) {
	doc := state.reconciled
	if doc == nil {
		doc = state.generated
	}

	doc, err := p.input(doc, p.paths.Stats)
	if err != nil {
		return "", err
	}

	roster, err := storage.LoadRoster(p.paths.Roster)
	if err != nil {
		return "", err
	}

	report := p.deps.Validator.Validate(roster, doc)
	if err := storage.WriteJSON(p.paths.Report, report); err != nil {
		return "", err
	}

	res.Report = report

	s := report.Summary
	log.Info("validation report written", "path", p.paths.Report,
		"missing_in_stats", s.MissingInStats, "missing_in_entries", s.MissingInEntries,
		"drivers_with_missing_fields", s.DriversWithMissingFields)

	if !report.OK() {
		fmt.Fprintf(p.out, "⚠️  %d missing in stats, %d missing in roster, %d with missing fields\n",
			s.MissingInStats, s.MissingInEntries, s.DriversWithMissingFields)
	}

	return p.paths.Report, nil
}

// merge picks the best document of this run, attaches the auxiliary career
// data and writes the canonical file.
func (p *Pipeline) merge(_ context.Context, log *logger.Logger, state *run, res *Result) (string, error) {
	doc := state.reconciled

	source := p.paths.Fixed
	if doc == nil {
		doc, source = state.generated, p.paths.Generated
	}

	if doc == nil {
		return "", ErrNoDocument
	}

	if storage.Exists(p.paths.Career) {
		careers, err := career.LoadWikiCareers(p.paths.Career)
		if err != nil {
			log.Warn("ignoring career file", "path", p.paths.Career, "error", err)
		} else {
			var touched []string
			doc, touched = career.AttachWikiCareers(doc, careers)
			log.Info("career data attached", "drivers", len(touched))
		}
	}

	bak, err := storage.SaveStats(p.paths.Stats, doc, true)
	if err != nil {
		return "", err
	}

	if bak != "" {
		res.Backup = bak
		fmt.Fprintf(p.out, "💾 Backup: %s\n", bak)
	}

	state.final = doc
	res.Final = p.paths.Stats

	log.Info("final document written", "path", p.paths.Stats, "source", source)

	return p.paths.Stats, nil
}

func (p *Pipeline) championships(_ context.Context, log *logger.Logger, state *run, res *Result) (string, error) {
	doc, err := p.input(state.final, p.paths.Stats)
	if err != nil {
		return "", err
	}

	out, changed := career.ComputeChampionships(doc)
	res.Championships = changed

	if len(changed) == 0 {
		fmt.Fprintln(p.out, "ℹ️  Championships unchanged")
		return "", nil
	}

	if err := storage.WriteJSON(p.paths.Stats, out); err != nil {
		return "", err
	}

	state.final = out

	log.Info("championships updated", "drivers", len(changed))

	return p.paths.Stats, nil
}

// input returns doc, or loads path when doc is nil.
func (p *Pipeline) input(doc *models.StatsDocument, path string) (*models.StatsDocument, error) {
	if doc != nil {
		return doc, nil
	}

	loaded, err := storage.LoadStats(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDocument, err)
	}

	p.log.Debug("stage input loaded from disk", "path", path)

	return loaded, nil
}

func (p *Pipeline) summary(res *Result, elapsed time.Duration) {
	fmt.Fprintln(p.out, "\n------------------------------------------------")
	fmt.Fprintln(p.out, "📊 Summary Report")
	fmt.Fprintln(p.out, "------------------------------------------------")
	fmt.Fprintf(p.out, "Run: %s\n", res.RunID)

	for _, s := range res.Stages {
		status := "✅"
		if !s.OK() {
			status = "❌"
		}

		fmt.Fprintf(p.out, "%s %-14s %v\n", status, s.Name, s.Duration.Round(time.Millisecond))

		if !s.OK() {
			fmt.Fprintf(p.out, "   %s\n", p.text.TruncateString(s.Err.Error(), summaryErrorWidth))
		}
	}

	if res.Final != "" {
		fmt.Fprintf(p.out, "Final document: %s\n", res.Final)
	}

	if len(res.Championships) > 0 {
		fmt.Fprintf(p.out, "Championships updated: %d\n", len(res.Championships))
	}

	fmt.Fprintf(p.out, "Total Duration: %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(p.out, "------------------------------------------------")
}
