package docdex

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/docdex/pkg/synclist"
)

// Buffer accumulates items for batched upserts. Add is safe for concurrent
// use; Flush drains the accumulated items atomically and sends them in one
// batch. When client metrics are enabled, the buffered-documents gauge tracks
// the fill level through list hooks.
type Buffer[T any] struct {
	idx   *TypedIndex[T]
	mu    sync.Mutex
	items *synclist.List[T]
}

func newBuffer[T any](idx *TypedIndex[T]) *Buffer[T] {
	b := &Buffer[T]{idx: idx}
	gauge := idx.client.obs.bufferGauge(idx.name)
	b.items = synclist.New[T]().WithHooks(synclist.Hooks[T]{
		OnInsert: func(int, T) error {
			if gauge != nil {
				gauge.Inc()
			}
			return nil
		},
		OnRemoveAt: func(int, T) {
			if gauge != nil {
				gauge.Dec()
			}
		},
		OnClear: func(removed int) {
			if gauge != nil {
				gauge.Sub(float64(removed))
			}
		},
	})
	return b
}

// Add appends an item to the buffer.
func (b *Buffer[T]) Add(item T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items.Add(item)
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	return b.items.Len()
}

// Flush drains the buffer and upserts the drained items in one batch.
// Items added after the drain point stay buffered for the next flush.
// An empty buffer flushes to a nil result without touching the engine.
func (b *Buffer[T]) Flush(ctx context.Context) ([]BatchResult, error) {
	b.mu.Lock()
	drained := make([]T, b.items.Len())
	if err := b.items.CopyTo(drained, 0); err != nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("flush: %w", err)
	}
	b.items.Clear()
	b.mu.Unlock()

	if len(drained) == 0 {
		return nil, nil
	}
	return b.idx.UpsertBatch(ctx, drained)
}
