package enrich

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type PipelineItem struct {
	mu      sync.Mutex
	Key     string
	Results map[string]any
}

func NewPipelineItem(key string) *PipelineItem {
	return &PipelineItem{Key: key, Results: make(map[string]any)}
}

func (p *PipelineItem) set(key string, val any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Results[key] = val
}

func StepAddValue(key string, val any) Step[PipelineItem] {
	return func(ctx context.Context, item *PipelineItem) error {
		item.set(key, val)
		return nil
	}
}

var errMock = errors.New("mock step failed")

func StepError(_ context.Context, _ *PipelineItem) error {
	return errMock
}

func TestPipeline_Run(t *testing.T) {
	tests := []struct {
		name      string
		stages    []Stage[PipelineItem]
		expected  map[string]any
		wantStage string
	}{
		{
			name:     "single step",
			stages:   []Stage[PipelineItem]{NewStage("one", StepAddValue("foo", "bar"))},
			expected: map[string]any{"foo": "bar"},
		},
		{
			name: "two steps in one stage run in parallel",
			stages: []Stage[PipelineItem]{
				NewStage("both", StepAddValue("x", 1), StepAddValue("y", 2)),
			},
			expected: map[string]any{"x": 1, "y": 2},
		},
		{
			name: "multi-stage sequential dependency",
			stages: []Stage[PipelineItem]{
				NewStage("first", StepAddValue("a", "first")),
				NewStage("second", func(_ context.Context, item *PipelineItem) error {
					if item.Results["a"] != "first" {
						return errors.New("second stage ran before first")
					}
					item.set("b", "second")
					return nil
				}),
			},
			expected: map[string]any{"a": "first", "b": "second"},
		},
		{
			name: "step error stops the item at its stage",
			stages: []Stage[PipelineItem]{
				NewStage("ok", StepAddValue("ok", true)),
				NewStage("broken", StepError),
				NewStage("never", StepAddValue("never", true)),
			},
			expected:  map[string]any{"ok": true},
			wantStage: "broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			item := NewPipelineItem("item")
			err := NewPipeline(tt.stages...).Run(ctx, item)

			if tt.wantStage == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantStage != "" {
				var stageErr *StageError
				if !errors.As(err, &stageErr) || stageErr.Stage != tt.wantStage || !errors.Is(err, errMock) {
					t.Fatalf("want StageError at %q, got %v", tt.wantStage, err)
				}
			}
			if !reflect.DeepEqual(item.Results, tt.expected) {
				t.Errorf("got %+v, expected %+v", item.Results, tt.expected)
			}
		})
	}
}

func TestPipeline_ProcessRespectsLimit(t *testing.T) {
	var inFlight, peak int32
	track := func(_ context.Context, item *PipelineItem) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		item.set("done", true)
		return nil
	}

	items := make([]*PipelineItem, 8)
	for i := range items {
		items[i] = NewPipelineItem(string(rune('a' + i)))
	}

	p := NewPipeline(NewStage("track", track)).WithLimit(3)
	if err := p.Process(context.Background(), items, func(*PipelineItem, error) error { return nil }); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if peak > 3 {
		t.Fatalf("peak concurrency %d exceeds limit 3", peak)
	}
	for _, it := range items {
		if it.Results["done"] != true {
			t.Fatalf("item %s was not processed", it.Key)
		}
	}
}

func TestPipeline_ProcessErrorHandler(t *testing.T) {
	failOn := func(key string) Step[PipelineItem] {
		return func(_ context.Context, item *PipelineItem) error {
			if item.Key == key {
				return errMock
			}
			item.set("done", true)
			return nil
		}
	}

	t.Run("skip keeps going", func(t *testing.T) {
		items := []*PipelineItem{NewPipelineItem("a"), NewPipelineItem("b"), NewPipelineItem("c")}
		var mu sync.Mutex
		var failed []string
		err := NewPipeline(NewStage("work", failOn("b"))).Process(context.Background(), items, func(item *PipelineItem, err error) error {
			mu.Lock()
			defer mu.Unlock()
			failed = append(failed, item.Key)
			return nil
		})
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if !reflect.DeepEqual(failed, []string{"b"}) {
			t.Fatalf("failed = %v", failed)
		}
		if items[2].Results["done"] != true {
			t.Fatal("item after the failure was not processed")
		}
	})

	t.Run("abort returns the handler error", func(t *testing.T) {
		items := []*PipelineItem{NewPipelineItem("a"), NewPipelineItem("b"), NewPipelineItem("c")}
		err := NewPipeline(NewStage("work", failOn("b"))).Process(context.Background(), items, func(item *PipelineItem, err error) error {
			return err
		})
		var stageErr *StageError
		if !errors.As(err, &stageErr) || stageErr.Stage != "work" {
			t.Fatalf("want StageError from work, got %v", err)
		}
		// limit 1 processes in order, so the item after the failure never runs
		if items[2].Results["done"] == true {
			t.Fatal("item after an abort should not complete")
		}
	})
}
