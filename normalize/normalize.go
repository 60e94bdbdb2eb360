// Package normalize holds the contract shared by the backend-specific
// extraction adapters: element id allocation, warning accumulation, and the
// common options every normalizer takes.
package normalize

import (
	"github.com/wudi/idmkit/observability"
	"github.com/wudi/idmkit/recovery"
)

// IDAllocator hands out process-unique element ids, monotonically increasing
// and scoped to one extraction run. Ids are never reused or renumbered, so
// extraction must process units strictly in source order.
type IDAllocator struct {
	next int
}

// NewIDAllocator starts a fresh counter for one extraction run.
func NewIDAllocator() *IDAllocator { return &IDAllocator{next: 1} }

// Next returns the next id.
func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Issued reports how many ids have been handed out.
func (a *IDAllocator) Issued() int { return a.next - 1 }

// Warning is a recoverable extraction problem: the element was dropped or
// approximated but the unit was still produced.
type Warning struct {
	Component string
	Message   string
}

// Options configure a normalizer. The zero value is usable: no-op logging and
// lenient per-element recovery.
type Options struct {
	Logger   observability.Logger
	Recovery recovery.Strategy
}

// Log returns the configured logger or a no-op one.
func (o Options) Log() observability.Logger {
	if o.Logger == nil {
		return observability.NopLogger{}
	}
	return o.Logger
}

// Strategy returns the configured recovery strategy or a lenient one.
func (o Options) Strategy() recovery.Strategy {
	if o.Recovery == nil {
		return recovery.NewLenientStrategy()
	}
	return o.Recovery
}
