// Package chflow provides context-aware channel operations so pipeline
// stages never block past cancellation.
package chflow

import "context"

// Receive reads a value from ch, honoring ctx cancellation. The boolean is
// false when the context was canceled or the channel was closed.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, false
	case v, ok := <-ch:
		return v, ok
	}
}

// Send writes v to ch, honoring ctx cancellation. It returns false when the
// context was canceled before the send could complete.
func Send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- v:
		return true
	}
}
