package models

// ByLocation maps reference-location names to per-location values and keeps
// the insertion order, which is the order of the input table.
type ByLocation[T any] struct {
	keys   []string
	values map[string]T
}

func NewByLocation[T any](capacity int) *ByLocation[T] {
	return &ByLocation[T]{
		keys:   make([]string, 0, capacity),
		values: make(map[string]T, capacity),
	}
}

// Set stores v under name. Re-setting an existing name keeps its position.
func (b *ByLocation[T]) Set(name string, v T) {
	if _, ok := b.values[name]; !ok {
		b.keys = append(b.keys, name)
	}
	b.values[name] = v
}

func (b *ByLocation[T]) Get(name string) (T, bool) {
	v, ok := b.values[name]
	return v, ok
}

func (b *ByLocation[T]) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

func (b *ByLocation[T]) Len() int {
	return len(b.keys)
}

// Each visits entries in insertion order and stops at the first error.
func (b *ByLocation[T]) Each(fn func(name string, v T) error) error {
	for _, k := range b.keys {
		if err := fn(k, b.values[k]); err != nil {
			return err
		}
	}
	return nil
}
