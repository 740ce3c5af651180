// Package eval calls functions on a frame stack.
//
// It does not evaluate expressions; arguments arrive already evaluated. What
// it does is the part of a call that concerns frames: opening a frame for the
// resolved function, binding the arguments to the slots a specialization left
// open, dispatching through adaptations and chains, and closing the frame.
package eval

import (
	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/dstack"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/fn"
	"github.com/iarwain/r3/pkg/frame"
	"github.com/iarwain/r3/pkg/gc"
	"github.com/iarwain/r3/pkg/guard"
)

// Apply calls c with positional arguments in a new frame of s.
//
// The arguments go to the parameters c takes at a call site, in order;
// refinements that get no argument are VOID. If the arguments cannot be bound,
// the frame is unwound before it runs. If the body of a function returns
// an error, Apply returns it right away and leaves the frames it opened for
// the nearest trap to unwind.
func Apply(s *frame.Stack, c fn.Callable, args ...cell.Value) (cell.Value, error) {
	return call(s, c, frame.Applying, args)
}

// Call is like Apply, but opens the frame in Normal mode, the way an evaluator
// does when it gathers arguments one by one.
func Call(s *frame.Stack, c fn.Callable, args ...cell.Value) (cell.Value, error) {
	return call(s, c, frame.Normal, args)
}

func call(s *frame.Stack, c fn.Callable, mode frame.Mode, args []cell.Value) (cell.Value, error) {
	cp := s.Checkpoint()
	f := s.Open(c, mode)
	if err := bindArgs(f, c, args); err != nil {
		// The frame never ran, so it is abandoned rather than closed.
		s.UnwindTo(cp)
		return cell.VoidValue, err
	}
	s.Activate(f)
	v, err := dispatch(s, f, c)
	if err != nil {
		return cell.VoidValue, err
	}
	s.Close(f)
	return v, nil
}

// Run calls Apply within a trap of s, so that the stacks are restored when it
// fails.
func Run(s *frame.Stack, c fn.Callable, args ...cell.Value) (cell.Value, error) {
	v := cell.VoidValue
	err := s.Trap(func() error {
		var err error
		v, err = Apply(s, c, args...)
		return err
	})
	return v, err
}

func bindArgs(f *frame.Frame, c fn.Callable, args []cell.Value) error {
	params := c.Params()
	required := 0
	for _, p := range params {
		if !p.Refinement {
			required++
		}
	}
	if len(args) < required || len(args) > len(params) {
		return errs.ArityMismatch{What: "arguments of " + c.Name(),
			ValidLow: required, ValidHigh: len(params), Actual: len(args)}
	}
	var exemplar []cell.Value
	if spec := f.Specializer(); spec != nil {
		exemplar = spec.Exemplar()
	}
	next := 0
	for n := 1; n <= f.NumArgs() && next < len(args); n++ {
		if exemplar != nil && !exemplar[n-1].IsVoid() {
			continue
		}
		if err := f.Bind(n, args[next]); err != nil {
			return err
		}
		next++
	}
	return nil
}

func dispatch(s *frame.Stack, f *frame.Frame, c fn.Callable) (cell.Value, error) {
	switch c := c.(type) {
	case *fn.Native:
		return runBody(s, f, c.Body())
	case *fn.Durable:
		return runBody(s, f, c.Body())
	case *fn.Specialization:
		return dispatch(s, f, c.Base())
	case *fn.Adaptation:
		if _, err := runBody(s, f, c.Prelude()); err != nil {
			return cell.VoidValue, err
		}
		return dispatch(s, f, c.Base())
	case *fn.Chain:
		funcs := c.Funcs()
		v, err := dispatch(s, f, funcs[0])
		for _, g := range funcs[1:] {
			if err != nil {
				break
			}
			v, err = Apply(s, g, v)
		}
		return v, err
	default:
		errs.Faultf("dispatch", "unknown callable %T", c)
		return cell.VoidValue, nil
	}
}

func runBody(s *frame.Stack, f *frame.Frame, body fn.Body) (cell.Value, error) {
	if body == nil {
		return cell.VoidValue, nil
	}
	return body(context{f, s})
}

// Implements fn.Context.
type context struct {
	*frame.Frame
	stack *frame.Stack
}

var _ fn.Context = context{}

func (c context) Data() *dstack.Stack   { return c.stack.Data() }
func (c context) Guards() *guard.Stacks { return c.stack.Guards() }
func (c context) Heap() *gc.Heap        { return c.stack.Heap() }

func (c context) Apply(callee fn.Callable, args ...cell.Value) (cell.Value, error) {
	return Apply(c.stack, callee, args...)
}
