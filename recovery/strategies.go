package recovery

import "fmt"

// StrictStrategy fails extraction on the first malformed element.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy { return &StrictStrategy{} }

func (s *StrictStrategy) OnError(err error, location Location) Action {
	return ActionFail
}

// LenientStrategy keeps extracting, accumulating every error it absorbed so
// callers can inspect what was dropped.
type LenientStrategy struct {
	Errors []error
}

func NewLenientStrategy() *LenientStrategy { return &LenientStrategy{} }

func (s *LenientStrategy) OnError(err error, location Location) Action {
	s.Errors = append(s.Errors, fmt.Errorf("[%s] unit %d element %d: %w", location.Component, location.Unit, location.Element, err))
	return ActionWarn
}
