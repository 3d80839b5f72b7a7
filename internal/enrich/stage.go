// Package enrich provides a small, generic pipeline abstraction that runs
// independent steps in parallel within a stage, while enforcing sequential
// execution between stages and bounding how many items are in flight.
package enrich

import (
	"context"
	"fmt"
)

// Step represents a single operation that mutates the given item.
// Implementations must be safe to run concurrently with the other steps of
// the same stage operating on the same item; steps of one stage should write
// disjoint fields. A returned error fails the item at this stage.
// The context is canceled when the run is aborted.
//
// Example:
//
//	func measure(ctx context.Context, j *Job) error { j.Distance = ...; return nil }
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups a set of steps that are safe to execute in parallel for a
// single item. All steps in a stage are started together, and the pipeline waits
// for them to complete before moving to the next stage.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs a named Stage from the provided steps. The name shows
// up in StageError.
func NewStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}

func (s Stage[T]) Name() string {
	return s.name
}

// StageError reports which stage an item failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
