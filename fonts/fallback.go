package fonts

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wudi/idmkit/observability"
)

// ErrFallbackExhausted is returned when no candidate in the fallback list
// could be registered. It is the one font condition callers must treat as a
// hard error: rendering cannot proceed without any usable font.
var ErrFallbackExhausted = errors.New("fonts: fallback list exhausted, no usable font")

// RegistrationContext is a throwaway rendering context a candidate font is
// validated against. Register returns nil when the font is usable.
type RegistrationContext interface {
	Register(name, path string) error
}

// Substitution records one fallback decision.
type Substitution struct {
	Original  string
	Fallback  string
	ElementID int
	Reason    string
}

// DefaultFallbacks is the fixed priority list tried when a requested font is
// unavailable. Order matters; selection never retries past the end.
var DefaultFallbacks = []string{
	"Helvetica",
	"Arial",
	"Times-Roman",
	"Courier",
	"DejaVu Sans",
	"Liberation Sans",
}

// FallbackManager implements the deterministic fallback policy: try each
// candidate in order, validate it by registering it in a throwaway context,
// and return the first that validates. The substitution log is append-only
// and safe for concurrent renderers.
type FallbackManager struct {
	validator  *Validator
	candidates []string
	tracker    *RegistrationTracker
	log        observability.Logger

	mu            sync.Mutex
	substitutions []Substitution
}

// NewFallbackManager builds a manager over the given candidate list; nil
// candidates means DefaultFallbacks.
func NewFallbackManager(validator *Validator, candidates []string, tracker *RegistrationTracker, log observability.Logger) *FallbackManager {
	if candidates == nil {
		candidates = DefaultFallbacks
	}
	if tracker == nil {
		tracker = NewRegistrationTracker()
	}
	if log == nil {
		log = observability.NopLogger{}
	}
	return &FallbackManager{validator: validator, candidates: candidates, tracker: tracker, log: log}
}

// Tracker exposes the registration tracker shared with callers.
func (m *FallbackManager) Tracker() *RegistrationTracker { return m.tracker }

// SelectFallback picks a substitute for an unavailable font. It makes at most
// len(candidates) registration attempts; exhaustion is reported as
// ErrFallbackExhausted, distinct from any individual validation error, and is
// recorded as a critical failure.
func (m *FallbackManager) SelectFallback(ctx RegistrationContext, original string, elementID int, reason string) (string, error) {
	for _, candidate := range m.candidates {
		path, _ := m.validator.Resolve(candidate)
		if err := ctx.Register(candidate, path); err != nil {
			m.tracker.RecordFailure(candidate)
			m.log.Debug("fallback candidate rejected",
				observability.String("candidate", candidate),
				observability.Error("err", err))
			continue
		}
		m.tracker.RecordFallback(original, candidate)
		m.record(Substitution{Original: original, Fallback: candidate, ElementID: elementID, Reason: reason})
		m.log.Info("substituted font",
			observability.String("original", original),
			observability.String("fallback", candidate),
			observability.Int("element", elementID))
		return candidate, nil
	}
	m.tracker.RecordCritical(original)
	return "", fmt.Errorf("no substitute for %q: %w", original, ErrFallbackExhausted)
}

func (m *FallbackManager) record(s Substitution) {
	m.mu.Lock()
	m.substitutions = append(m.substitutions, s)
	m.mu.Unlock()
}

// Substitutions returns a copy of the substitution log.
func (m *FallbackManager) Substitutions() []Substitution {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Substitution, len(m.substitutions))
	copy(out, m.substitutions)
	return out
}
