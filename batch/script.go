package batch

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/wudi/idmkit/idm"
)

// ScriptFilter is an element filter written as a JavaScript predicate. The
// source must evaluate to a function taking one element object:
//
//	function(el) { return el.text.includes("Total") && el.font === "Arial"; }
//
// The element object carries id, text, raw_text, font, size and
// bbox:[x0,y0,x1,y1]. The filter is not safe for concurrent use; batch
// operations are single-threaded by design.
type ScriptFilter struct {
	vm *goja.Runtime
	fn goja.Callable
}

// NewScriptFilter compiles the predicate source.
func NewScriptFilter(src string) (*ScriptFilter, error) {
	vm := goja.New()
	val, err := vm.RunString("(" + src + ")")
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	fn, ok := goja.AssertFunction(val)
	if !ok {
		return nil, fmt.Errorf("filter source is not a function")
	}
	return &ScriptFilter{vm: vm, fn: fn}, nil
}

// Match evaluates the predicate for one element. A hung script is interrupted
// when ctx is done.
func (f *ScriptFilter) Match(ctx context.Context, txt *idm.Text) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	done := make(chan struct{})
	defer close(done)
	defer f.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			f.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	el := f.vm.NewObject()
	el.Set("id", txt.ElementID)
	el.Set("text", txt.NormalizedText)
	el.Set("raw_text", txt.RawText)
	el.Set("font", txt.Font.Name)
	el.Set("size", txt.Font.Size)
	el.Set("bbox", []float64{txt.BBox.X0, txt.BBox.Y0, txt.BBox.X1, txt.BBox.Y1})

	val, err := f.fn(goja.Undefined(), el)
	if err != nil {
		if interrupted, ok := err.(*goja.InterruptedError); ok {
			if cause := interrupted.Unwrap(); cause != nil {
				return false, cause
			}
			return false, context.Canceled
		}
		return false, fmt.Errorf("evaluate filter: %w", err)
	}
	return val.ToBoolean(), nil
}

// Bind adapts the filter to the ElementFilter signature. Evaluation errors
// exclude the element and are reported through onErr when provided.
func (f *ScriptFilter) Bind(ctx context.Context, onErr func(error)) ElementFilter {
	return func(txt *idm.Text) bool {
		ok, err := f.Match(ctx, txt)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return false
		}
		return ok
	}
}
