package editor

import "fmt"

// Move returns a copy of items with the element at from removed and
// reinserted at to. Elements in between shift by one. items is not modified.
func Move[T any](items []T, from, to int) ([]T, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: from=%d to=%d len=%d", ErrInvalidMove, from, to, n)
	}
	out := make([]T, 0, n)
	moved := items[from]
	for i, item := range items {
		if i == from {
			continue
		}
		if len(out) == to {
			out = append(out, moved)
		}
		out = append(out, item)
	}
	if len(out) < n {
		out = append(out, moved)
	}
	return out, nil
}
