// Package finder runs the per-location pipeline: search, normalize, measure
// and merge.
package finder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"eatery/internal/distance"
	"eatery/internal/enrich"
	"eatery/internal/merge"
	internalmodels "eatery/internal/models"
	"eatery/internal/normalize"
	"eatery/internal/search"
	"eatery/models"
	"eatery/pkg/geo"
	"eatery/pkg/places"
	"eatery/pkg/routing"
)

// Stage names.
const (
	StageSearch    = "search"
	StageNormalize = "normalize"
	StageDistance  = "distance"
	StageMerge     = "merge"
)

// Policy says what a failed location does to the run.
type Policy string

const (
	// PolicyAbort stops the run at the first failing location.
	PolicyAbort Policy = "abort"
	// PolicySkip records the failure and leaves the location out of the results.
	PolicySkip Policy = "skip"
)

var ErrUnknownPolicy = errors.New("unknown failure policy")

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAbort, nil
	case PolicyAbort, PolicySkip:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Options are the per-run choices.
type Options struct {
	Query       search.Query
	Unit        geo.Unit
	Mode        routing.Mode
	Concurrency int
	Policy      Policy
}

// StageError names the location and the stage that failed.
type StageError struct {
	Location string
	Stage    string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("location %q: stage %s: %v", e.Location, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Job carries one location through the pipeline. Each stage writes its own
// fields; the distance stage's two steps write disjoint ones.
type Job struct {
	Location    models.Location
	Raw         []places.SearchResponse
	Candidates  internalmodels.CandidateTable
	GreatCircle internalmodels.GreatCircleTable
	Routed      internalmodels.RoutedTable
	Merged      internalmodels.MergedTable
}

// Report holds every intermediate mapping of a run, keyed and ordered by the
// input locations that succeeded.
type Report struct {
	Raw         *internalmodels.ByLocation[[]places.SearchResponse]
	Candidates  *internalmodels.ByLocation[internalmodels.CandidateTable]
	GreatCircle *internalmodels.ByLocation[internalmodels.GreatCircleTable]
	Routed      *internalmodels.ByLocation[internalmodels.RoutedTable]
	Merged      *internalmodels.ByLocation[internalmodels.MergedTable]
	// Failures is only populated under PolicySkip, in input order.
	Failures []*StageError
}

type Finder struct {
	searcher   *search.Searcher
	normalizer *normalize.Normalizer
	router     *distance.Router
	opts       Options
}

func New(searcher *search.Searcher, normalizer *normalize.Normalizer, router *distance.Router, opts Options) *Finder {
	if opts.Unit == "" {
		opts.Unit = geo.Kilometers
	}
	if opts.Mode == "" {
		opts.Mode = routing.Driving
	}
	if opts.Policy == "" {
		opts.Policy = PolicyAbort
	}
	return &Finder{searcher: searcher, normalizer: normalizer, router: router, opts: opts}
}

func (f *Finder) pipeline() *enrich.Pipeline[Job] {
	return enrich.NewPipeline(
		enrich.NewStage(StageSearch, f.search),
		enrich.NewStage(StageNormalize, f.normalize),
		enrich.NewStage(StageDistance, f.greatCircle, f.routed),
		enrich.NewStage(StageMerge, f.merge),
	).WithLimit(f.opts.Concurrency)
}

func (f *Finder) search(ctx context.Context, j *Job) error {
	raw, err := f.searcher.SearchOne(ctx, j.Location, f.opts.Query)
	if err != nil {
		return err
	}
	j.Raw = raw
	return nil
}

func (f *Finder) normalize(_ context.Context, j *Job) error {
	j.Candidates = f.normalizer.Table(j.Location, j.Raw)
	return nil
}

func (f *Finder) greatCircle(_ context.Context, j *Job) error {
	g, err := distance.GreatCircleOne(j.Location, j.Candidates, f.opts.Unit)
	if err != nil {
		return err
	}
	j.GreatCircle = g
	return nil
}

func (f *Finder) routed(ctx context.Context, j *Job) error {
	routed, err := f.router.ComputeOne(ctx, j.Location, j.Candidates, f.opts.Mode)
	if err != nil {
		return err
	}
	j.Routed = routed
	return nil
}

func (f *Finder) merge(_ context.Context, j *Job) error {
	merged, err := merge.Table(j.Candidates, j.GreatCircle, j.Routed)
	if err != nil {
		return err
	}
	merged.Query = f.opts.Query.Text
	j.Merged = merged
	return nil
}

// Run processes every location. Results keep the order of locations no
// matter how many run at once.
func (f *Finder) Run(ctx context.Context, locations []models.Location) (*Report, error) {
	if err := f.opts.Query.Validate(); err != nil {
		return nil, err
	}
	if _, err := geo.ParseUnit(string(f.opts.Unit)); err != nil {
		return nil, err
	}

	start := time.Now()
	jobs := make([]*Job, len(locations))
	index := make(map[*Job]int, len(locations))
	for i, loc := range locations {
		jobs[i] = &Job{Location: loc}
		index[jobs[i]] = i
	}

	var mu sync.Mutex
	failures := make([]*StageError, len(locations))
	onError := func(j *Job, err error) error {
		stageErr := &StageError{Location: j.Location.Name, Err: err}
		var pipeErr *enrich.StageError
		if errors.As(err, &pipeErr) {
			stageErr.Stage = pipeErr.Stage
			stageErr.Err = pipeErr.Err
		}
		if f.opts.Policy == PolicyAbort {
			return stageErr
		}
		log.Printf("Skipping %q: %v", j.Location.Name, stageErr)
		mu.Lock()
		failures[index[j]] = stageErr
		mu.Unlock()
		return nil
	}

	log.Printf("Processing %d locations (query=%q, radius=%vm, concurrency=%d, policy=%s)",
		len(locations), f.opts.Query.Text, f.opts.Query.Radius, f.opts.Concurrency, f.opts.Policy)
	if err := f.pipeline().Process(ctx, jobs, onError); err != nil {
		return nil, err
	}
	// skipped cancellations are an interrupted run, not failed locations
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Raw:         internalmodels.NewByLocation[[]places.SearchResponse](len(jobs)),
		Candidates:  internalmodels.NewByLocation[internalmodels.CandidateTable](len(jobs)),
		GreatCircle: internalmodels.NewByLocation[internalmodels.GreatCircleTable](len(jobs)),
		Routed:      internalmodels.NewByLocation[internalmodels.RoutedTable](len(jobs)),
		Merged:      internalmodels.NewByLocation[internalmodels.MergedTable](len(jobs)),
	}
	for i, j := range jobs {
		if failures[i] != nil {
			report.Failures = append(report.Failures, failures[i])
			continue
		}
		name := j.Location.Name
		report.Raw.Set(name, j.Raw)
		report.Candidates.Set(name, j.Candidates)
		report.GreatCircle.Set(name, j.GreatCircle)
		report.Routed.Set(name, j.Routed)
		report.Merged.Set(name, j.Merged)
	}
	log.Printf("Finished %d locations (%d failed) in %s", report.Merged.Len(), len(report.Failures), time.Since(start))
	return report, nil
}
