package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pipeline coordinates the execution of a sequence of stages for a batch of
// items. For each item, steps within the same stage run in parallel, and
// stages themselves run sequentially. Items are independent of each other
// and are processed concurrently up to the pipeline's limit.
//
// Pipeline is generic over the item type T.
type Pipeline[T any] struct {
	stages []Stage[T]
	limit  int
}

// NewPipeline constructs a Pipeline from the provided stages. Stages will be
// applied to each item in order. The default limit is one item at a time.
func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages, limit: 1}
}

// WithLimit sets how many items may be in flight at once. Values below one
// are treated as one.
func (p *Pipeline[T]) WithLimit(n int) *Pipeline[T] {
	if n < 1 {
		n = 1
	}
	p.limit = n
	return p
}

// Run applies every stage to a single item. The first failing step stops the
// item and is returned as a *StageError.
func (p *Pipeline[T]) Run(ctx context.Context, item *T) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: stage.name, Err: err}
		}
		g, stageCtx := errgroup.WithContext(ctx)
		for _, step := range stage.steps {
			step := step
			g.Go(func() error {
				return step(stageCtx, item)
			})
		}
		// stage barrier: ensure all steps finished before the next stage
		if err := g.Wait(); err != nil {
			return &StageError{Stage: stage.name, Err: err}
		}
	}
	return nil
}

// ErrorHandler decides what a failed item means for the whole batch.
// Returning nil records the failure and keeps going; returning an error
// aborts the batch, cancels the items still in flight, and becomes the
// result of Process.
type ErrorHandler[T any] func(item *T, err error) error

// Process runs every item through the pipeline. Items keep their slice
// positions, so callers read results back in input order regardless of
// completion order.
func (p *Pipeline[T]) Process(ctx context.Context, items []*T, onError ErrorHandler[T]) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)
	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := p.Run(ctx, item); err != nil {
				return onError(item, err)
			}
			return nil
		})
	}
	return g.Wait()
}
