package fonts

import "sync"

// Stats is a point-in-time snapshot of registration outcomes.
type Stats struct {
	Attempts         int
	Successes        int
	Fallbacks        int
	Failures         int
	CriticalFailures int
	SuccessRate      float64
	FallbackRate     float64
}

// FontOutcomes tallies registration outcomes for one font name.
type FontOutcomes struct {
	Successes int
	Fallbacks int
	Failures  int
	Critical  int
}

// RegistrationTracker records every font registration attempt, in aggregate
// and per font name. It is append-only; a mutex guards it so concurrent
// renderers can share one tracker.
type RegistrationTracker struct {
	mu        sync.Mutex
	successes int
	fallbacks int
	failures  int
	critical  int
	byFont    map[string]*FontOutcomes
}

func NewRegistrationTracker() *RegistrationTracker {
	return &RegistrationTracker{byFont: make(map[string]*FontOutcomes)}
}

func (t *RegistrationTracker) tally(font string) *FontOutcomes {
	if t.byFont == nil {
		t.byFont = make(map[string]*FontOutcomes)
	}
	o := t.byFont[font]
	if o == nil {
		o = &FontOutcomes{}
		t.byFont[font] = o
	}
	return o
}

// RecordSuccess notes a font that registered directly.
func (t *RegistrationTracker) RecordSuccess(font string) {
	t.mu.Lock()
	t.successes++
	t.tally(font).Successes++
	t.mu.Unlock()
}

// RecordFallback notes a registration that succeeded via a substitute. The
// fallback counts for the substitute font; the original keeps its failure
// trail from the RecordFailure calls that preceded the substitution.
func (t *RegistrationTracker) RecordFallback(original, fallback string) {
	t.mu.Lock()
	t.fallbacks++
	t.tally(fallback).Fallbacks++
	t.mu.Unlock()
}

// RecordFailure notes a single rejected candidate.
func (t *RegistrationTracker) RecordFailure(font string) {
	t.mu.Lock()
	t.failures++
	t.tally(font).Failures++
	t.mu.Unlock()
}

// RecordCritical notes an unrecoverable outcome: no usable font at all.
func (t *RegistrationTracker) RecordCritical(font string) {
	t.mu.Lock()
	t.critical++
	t.tally(font).Critical++
	t.mu.Unlock()
}

// Stats computes aggregate health numbers. An attempt is any terminal
// outcome: direct success, fallback success, or critical failure.
func (t *RegistrationTracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	attempts := t.successes + t.fallbacks + t.critical
	s := Stats{
		Attempts:         attempts,
		Successes:        t.successes,
		Fallbacks:        t.fallbacks,
		Failures:         t.failures,
		CriticalFailures: t.critical,
	}
	if attempts > 0 {
		s.SuccessRate = float64(t.successes+t.fallbacks) / float64(attempts)
		s.FallbackRate = float64(t.fallbacks) / float64(attempts)
	}
	return s
}

// ByFont returns a copy of the per-font tallies.
func (t *RegistrationTracker) ByFont() map[string]FontOutcomes {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]FontOutcomes, len(t.byFont))
	for name, o := range t.byFont {
		out[name] = *o
	}
	return out
}

// Healthy reports whether no critical failures have been recorded.
func (t *RegistrationTracker) Healthy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.critical == 0
}
