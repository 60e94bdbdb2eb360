// Package recovery defines the per-element error policy the extraction
// normalizers consult when a backend hands over a malformed block, drawing,
// or layer. Structural failures are isolated and recovered locally wherever
// the rest of the document can still be produced.
package recovery

// Location pinpoints where inside an extraction run an error occurred.
type Location struct {
	Unit      int    // page or canvas index within the run
	Element   int    // index of the backend block/drawing/layer, -1 if unknown
	Component string // e.g. "paged.drawings", "layered.metadata"
}

// Action is the strategy's verdict for one error.
type Action int

const (
	// ActionFail aborts extraction of the whole unit.
	ActionFail Action = iota
	// ActionSkip drops the offending element silently.
	ActionSkip
	// ActionWarn drops the offending element and records a warning.
	ActionWarn
)

// Strategy decides how the normalizers react to per-element failures.
type Strategy interface {
	OnError(err error, location Location) Action
}
