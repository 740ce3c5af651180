// Package frame implements the call frame stack.
//
// A frame holds the arguments of one function call. Opening a frame resolves
// the function to its underlying native or durable function and allocates one
// slot per parameter of it: a chunk of the chunk stack for native functions, a
// managed array for durable ones, whose arguments may be captured and outlive
// the call. Frames are closed in LIFO order, or abandoned in bulk when a trap
// unwinds to a checkpoint.
//
// A Stack is owned by a single goroutine.
package frame

import (
	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/chunk"
	"github.com/iarwain/r3/pkg/config"
	"github.com/iarwain/r3/pkg/dstack"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/errutil"
	"github.com/iarwain/r3/pkg/fn"
	"github.com/iarwain/r3/pkg/gc"
	"github.com/iarwain/r3/pkg/guard"
	"github.com/iarwain/r3/pkg/logutil"
)

var logger = logutil.GetLogger("[frame] ")

// Stack is a call frame stack, together with the stacks a call uses: the
// chunk stack, the data stack and the guard stacks, and the heap of managed
// arrays.
type Stack struct {
	chunks *chunk.Chunker
	data   *dstack.Stack
	guards guard.Stacks
	heap   *gc.Heap

	top      *Frame
	depth    int
	maxDepth int
	opened   int
	unwound  int

	// OnActivate, if not nil, is called after a frame is activated.
	OnActivate func(*Frame)
}

// New creates a Stack. The configuration must be valid.
func New(cfg config.Config) *Stack {
	return &Stack{
		chunks: chunk.New(cfg.PageSlots, cfg.Debug),
		data:   dstack.New(cfg.StackInitial, cfg.StackLimit),
		heap:   gc.NewHeap(),
	}
}

// Data returns the data stack.
func (s *Stack) Data() *dstack.Stack { return s.data }

// Guards returns the guard stacks.
func (s *Stack) Guards() *guard.Stacks { return &s.guards }

// Heap returns the heap of managed arrays.
func (s *Stack) Heap() *gc.Heap { return s.heap }

// Chunks returns the chunk stack.
func (s *Stack) Chunks() *chunk.Chunker { return s.chunks }

// Top returns the topmost frame, or nil if there is none.
func (s *Stack) Top() *Frame { return s.top }

// Depth returns the number of frames.
func (s *Stack) Depth() int { return s.depth }

// Open pushes a frame for calling c, in the Preparing state.
//
// The frame has one slot per parameter of the function c resolves to. Slots
// specialized by c start with the specialized value; the others start with END
// in Normal mode and VOID in Applying mode.
func (s *Stack) Open(c fn.Callable, mode Mode) *Frame {
	underlying, specializer := fn.Resolve(c)
	n := len(underlying.Params())
	f := &Frame{
		stack: s, prior: s.top, callable: c, underlying: underlying,
		specializer: specializer, mode: mode, depth: s.depth + 1,
	}

	var slots []cell.Value
	if _, ok := underlying.(*fn.Durable); ok {
		f.varlist = gc.NewArray(n)
		f.varlist.SetFixedSize()
		s.heap.Manage(f.varlist)
		slots = f.varlist.Cells()
	} else {
		f.chunk = s.chunks.Push(n)
		slots = s.chunks.Values(f.chunk)
	}

	unfilled := cell.EndValue
	if mode == Applying {
		unfilled = cell.VoidValue
	}
	var exemplar []cell.Value
	if specializer != nil {
		exemplar = specializer.Exemplar()
	}
	for i := range slots {
		if exemplar != nil && !exemplar[i].IsVoid() {
			slots[i] = exemplar[i]
			f.specialized = true
		} else {
			slots[i] = unfilled
		}
	}

	s.top = f
	s.depth++
	s.opened++
	if s.depth > s.maxDepth {
		s.maxDepth = s.depth
	}
	return f
}

// Activate moves the top frame from Preparing to Running. Slots that are still
// END become VOID.
func (s *Stack) Activate(f *Frame) {
	s.checkTop("activate", f)
	if f.state != Preparing {
		errs.Faultf("activate", "frame of %s is %s", f.callable.Name(), f.state)
	}
	args := f.Args()
	for i, v := range args {
		if v.IsEnd() {
			args[i] = cell.VoidValue
		}
	}
	f.state = Running
	if s.OnActivate != nil {
		s.OnActivate(f)
	}
}

// Close pops the top frame, which must be running. The chunk of a native frame
// is released; the varlist of a durable frame is left to the collector. A frame
// that is still preparing can only be abandoned with UnwindTo.
func (s *Stack) Close(f *Frame) {
	s.checkTop("close", f)
	if f.state != Running {
		errs.Faultf("close", "frame of %s is %s", f.callable.Name(), f.state)
	}
	if f.varlist == nil {
		s.chunks.Drop(f.chunk)
	}
	f.state = Returned
	s.top = f.prior
	s.depth--
}

func (s *Stack) checkTop(op string, f *Frame) {
	if f.stack != s {
		errs.Faultf(op, "frame of %s belongs to another stack", f.callable.Name())
	}
	if f != s.top {
		errs.Faultf(op, "frame of %s at depth %d is not the top frame (depth %d)",
			f.callable.Name(), f.depth, s.depth)
	}
}

// Checkpoint records the tops of all the stacks.
type Checkpoint struct {
	chunks chunk.Mark
	data   int
	top    *Frame
	depth  int
	arrays int
	values int
}

// Depth returns the frame depth at the time the checkpoint was taken.
func (cp Checkpoint) Depth() int { return cp.depth }

// Checkpoint records the current tops of all the stacks.
func (s *Stack) Checkpoint() Checkpoint {
	arrays, values := s.guards.Depths()
	return Checkpoint{s.chunks.Checkpoint(), s.data.Len(), s.top, s.depth, arrays, values}
}

// UnwindTo abandons everything done since cp was taken: frames opened since
// are marked Unwound and the chunk stack, the data stack and the guard stacks
// are truncated back in one step each. Unwinding to the current state does
// nothing.
func (s *Stack) UnwindTo(cp Checkpoint) {
	if cp.depth > s.depth {
		errs.Faultf("unwind", "checkpoint at depth %d is above the top frame (depth %d)",
			cp.depth, s.depth)
	}
	f := s.top
	for f != nil && f.depth > cp.depth {
		f = f.prior
	}
	if f != cp.top {
		errs.Faultf("unwind", "checkpoint at depth %d is stale", cp.depth)
	}
	for f := s.top; f != cp.top; f = f.prior {
		f.state = Unwound
		s.unwound++
	}
	if n := s.depth - cp.depth; n > 0 {
		logger.Printf("unwinding %d frames to depth %d", n, cp.depth)
	}
	s.top = cp.top
	s.depth = cp.depth
	s.chunks.Truncate(cp.chunks)
	s.data.PopTo(cp.data)
	s.guards.TruncateTo(cp.arrays, cp.values)
}

// Trap calls body. If body returns an error, everything body left behind is
// unwound and the error is returned. Otherwise, body must have closed all the
// frames it opened, and must have removed all the guards it added; leftover
// guards are dropped and reported as an errs.GuardLeak.
func (s *Stack) Trap(body func() error) error {
	cp := s.Checkpoint()
	if err := body(); err != nil {
		s.UnwindTo(cp)
		return err
	}
	if s.top != cp.top {
		errs.Faultf("trap", "%d frames left open", s.depth-cp.depth)
	}
	if arrays, values := s.guards.Depths(); arrays != cp.arrays || values != cp.values {
		s.guards.TruncateTo(cp.arrays, cp.values)
		return errs.GuardLeak{Arrays: arrays - cp.arrays, Values: values - cp.values}
	}
	return nil
}

// Roots enumerates everything a Stack keeps alive: the arguments of all
// frames, the data stack and the guarded arrays and cells.
func (s *Stack) Roots(markArray func(*gc.Array), markValue func(cell.Value)) {
	for f := s.top; f != nil; f = f.prior {
		if f.varlist != nil {
			markArray(f.varlist)
			continue
		}
		for _, v := range f.Args() {
			if !v.IsEnd() {
				markValue(v)
			}
		}
	}
	s.data.Roots(markArray, markValue)
	s.guards.Roots(markArray, markValue)
}

// Recycle runs the collector with the Stack as the root set. It returns the
// number of reclaimed arrays.
func (s *Stack) Recycle() int { return s.heap.Recycle(s) }

// Stats keeps statistics of a Stack.
type Stats struct {
	Depth    int `json:"depth"`
	MaxDepth int `json:"maxDepth"`

	// Frames opened and frames abandoned by unwinding.
	Opened  int `json:"opened"`
	Unwound int `json:"unwound"`

	DataLen        int `json:"dataLen"`
	DataMaxLen     int `json:"dataMaxLen"`
	DataExpansions int `json:"dataExpansions"`

	Chunks chunk.Stats  `json:"chunks"`
	Heap   gc.HeapStats `json:"heap"`
}

// Stats returns statistics of the Stack.
func (s *Stack) Stats() Stats {
	return Stats{
		Depth: s.depth, MaxDepth: s.maxDepth, Opened: s.opened, Unwound: s.unwound,
		DataLen: s.data.Len(), DataMaxLen: s.data.MaxLen(), DataExpansions: s.data.Expansions(),
		Chunks: s.chunks.Stats(), Heap: s.heap.Stats(),
	}
}

// Shutdown checks that all the stacks are back at their initial state and
// releases the pages of the chunk stack. The Stack must not be used
// afterwards.
func (s *Stack) Shutdown() error {
	var frameErr, dataErr error
	if s.depth != 0 {
		frameErr = errs.Fault{Op: "shutdown", Reason: "frames left open"}
	}
	if n := s.data.Len(); n != 0 {
		dataErr = errs.Fault{Op: "shutdown", Reason: "data stack not empty"}
	}
	return errutil.Multi(frameErr, dataErr, s.guards.AssertEmpty(), s.chunks.Shutdown())
}

// Info describes a frame for inspection.
type Info struct {
	Name    string   `json:"name"`
	State   string   `json:"state"`
	Depth   int      `json:"depth"`
	Durable bool     `json:"durable"`
	Args    []string `json:"args"`
}

// Frames describes all the frames, from the top down.
func (s *Stack) Frames() []Info {
	infos := make([]Info, 0, s.depth)
	for f := s.top; f != nil; f = f.prior {
		args := make([]string, f.NumArgs())
		for i, v := range f.Args() {
			args[i] = v.Repr()
		}
		infos = append(infos, Info{
			f.callable.Name(), f.state.String(), f.depth, f.Durable(), args})
	}
	return infos
}
