package frame

import (
	"strconv"

	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/chunk"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/fn"
	"github.com/iarwain/r3/pkg/gc"
)

// Mode decides what the argument slots not filled by a specialization start
// with.
type Mode uint8

const (
	// Normal frames start with END in unfilled slots; arguments are then
	// gathered one by one, and END marks those still missing.
	Normal Mode = iota
	// Applying frames start with VOID in unfilled slots, as the caller binds
	// arguments by position and leaves the rest absent.
	Applying
)

func (m Mode) String() string {
	if m == Applying {
		return "applying"
	}
	return "normal"
}

// State is the lifecycle state of a Frame.
type State uint8

const (
	// Preparing frames are being filled with arguments.
	Preparing State = iota
	// Running frames have been activated and their function is running.
	Running
	// Returned frames have been closed normally.
	Returned
	// Unwound frames were abandoned by UnwindTo.
	Unwound
)

var stateNames = [...]string{"preparing", "running", "returned", "unwound"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Frame is the record of one function call.
type Frame struct {
	stack       *Stack
	prior       *Frame
	callable    fn.Callable
	underlying  fn.Callable
	specializer *fn.Specialization
	mode        Mode
	// Whether an exemplar filled some slots.
	specialized bool
	state       State
	depth       int

	// Exactly one of chunk and varlist holds the arguments.
	chunk   chunk.Handle
	varlist *gc.Array
}

// Prior returns the frame below f.
func (f *Frame) Prior() *Frame { return f.prior }

// Callable returns the function the frame was opened for.
func (f *Frame) Callable() fn.Callable { return f.callable }

// Underlying returns the function whose parameter list the frame is built for.
func (f *Frame) Underlying() fn.Callable { return f.underlying }

// Specializer returns the specialization whose exemplar filled the frame, or
// nil.
func (f *Frame) Specializer() *fn.Specialization { return f.specializer }

func (f *Frame) Mode() Mode    { return f.mode }
func (f *Frame) State() State  { return f.state }
func (f *Frame) Depth() int    { return f.depth }
func (f *Frame) Durable() bool { return f.varlist != nil }

// Specialized reports whether an exemplar filled some of the arguments.
func (f *Frame) Specialized() bool { return f.specialized }

// Varlist returns the managed array holding the arguments of a durable frame,
// and nil for other frames. It stays valid after the frame is closed, for as
// long as the collector finds it reachable.
func (f *Frame) Varlist() *gc.Array { return f.varlist }

// NumArgs returns the number of argument slots.
func (f *Frame) NumArgs() int {
	if f.varlist != nil {
		return f.varlist.Len()
	}
	return f.chunk.Len()
}

// Args returns the argument slots. The slice aliases the frame storage.
func (f *Frame) Args() []cell.Value {
	if f.varlist != nil {
		return f.varlist.Cells()
	}
	if f.state == Returned || f.state == Unwound {
		errs.Faultf("args", "frame of %s is %s", f.callable.Name(), f.state)
	}
	return f.stack.chunks.Values(f.chunk)
}

// Arg returns the argument in the 1-based slot n.
func (f *Frame) Arg(n int) cell.Value {
	return f.Args()[f.index("arg", n)]
}

// SetArg sets the argument in slot n. Unlike Bind, it works on running frames,
// whose argument slots double as local variables.
func (f *Frame) SetArg(n int, v cell.Value) {
	if f.state != Preparing && f.state != Running {
		errs.Faultf("set arg", "frame of %s is %s", f.callable.Name(), f.state)
	}
	f.Args()[f.index("set arg", n)] = v
}

// Bind binds the argument in the 1-based slot n of a preparing frame.
func (f *Frame) Bind(n int, v cell.Value) error {
	if f.state != Preparing {
		errs.Faultf("bind", "frame of %s is %s", f.callable.Name(), f.state)
	}
	if n < 1 || n > f.NumArgs() {
		return errs.OutOfRange{What: "argument index",
			ValidLow: 1, ValidHigh: f.NumArgs(), Actual: n}
	}
	if v.IsEnd() {
		return errs.BadValue{What: "argument value", Valid: "a value", Actual: v.Repr()}
	}
	f.Args()[n-1] = v
	return nil
}

// Unbound returns the 1-based indices of the slots that are still END.
func (f *Frame) Unbound() []int {
	var ns []int
	for i, v := range f.Args() {
		if v.IsEnd() {
			ns = append(ns, i+1)
		}
	}
	return ns
}

func (f *Frame) index(op string, n int) int {
	if n < 1 || n > f.NumArgs() {
		errs.Faultf(op, "slot %d of %s out of range 1 to %d",
			n, f.callable.Name(), f.NumArgs())
	}
	return n - 1
}
