// Package dstack implements the data stack, where the evaluator accumulates
// intermediate values, for instance while collecting the items of a block.
//
// The stack is a single growable buffer. Growing may move it, so the Stack
// never hands out references to its slots; positions are plain indices, which
// stay valid across growth.
package dstack

import (
	"github.com/xiaq/persistent/vector"

	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/gc"
	"github.com/iarwain/r3/pkg/logutil"
)

var logger = logutil.GetLogger("[dstack] ")

// DefaultLimit is the default maximum number of values on the data stack.
const DefaultLimit = 400000

// Stack is a data stack.
type Stack struct {
	cells      []cell.Value
	limit      int
	expansions int
	maxLen     int
}

// New creates a Stack with the given initial capacity and maximum length.
func New(initial, limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if initial <= 0 || initial > limit {
		initial = min(limit, 128)
	}
	return &Stack{cells: make([]cell.Value, 0, initial), limit: limit}
}

// Len returns the number of values on the stack, which is also the index the
// next push goes to.
func (s *Stack) Len() int { return len(s.cells) }

// Cap returns the current capacity of the buffer.
func (s *Stack) Cap() int { return cap(s.cells) }

// Limit returns the maximum number of values.
func (s *Stack) Limit() int { return s.limit }

// Expansions returns how many times the buffer has been grown.
func (s *Stack) Expansions() int { return s.expansions }

// MaxLen returns the largest length the stack has reached.
func (s *Stack) MaxLen() int { return s.maxLen }

// Push pushes a value. It fails with errs.StackOverflow when the stack is
// already at its limit, in which case the stack is unchanged.
func (s *Stack) Push(v cell.Value) error {
	if len(s.cells) == cap(s.cells) {
		if err := s.expand(); err != nil {
			return err
		}
	}
	s.cells = append(s.cells, v)
	if len(s.cells) > s.maxLen {
		s.maxLen = len(s.cells)
	}
	return nil
}

func (s *Stack) expand() error {
	if cap(s.cells) >= s.limit {
		return errs.StackOverflow{Limit: s.limit}
	}
	newCap := min(max(2*cap(s.cells), 8), s.limit)
	cells := make([]cell.Value, len(s.cells), newCap)
	copy(cells, s.cells)
	s.cells = cells
	s.expansions++
	logger.Printf("expanded to %d values with %d in use", newCap, len(s.cells))
	return nil
}

// At returns the value at index i.
func (s *Stack) At(i int) cell.Value { return s.cells[i] }

// Set sets the value at index i.
func (s *Stack) Set(i int, v cell.Value) { s.cells[i] = v }

// Top returns the topmost value, or END if the stack is empty.
func (s *Stack) Top() cell.Value {
	if len(s.cells) == 0 {
		return cell.EndValue
	}
	return s.cells[len(s.cells)-1]
}

// PopTo drops all values at index i and above.
func (s *Stack) PopTo(i int) {
	if i < 0 || i > len(s.cells) {
		errs.Faultf("pop", "index %d is above the top %d", i, len(s.cells))
	}
	clear(s.cells[i:])
	s.cells = s.cells[:i]
}

// Collect pops the values at index start and above, and returns them in order
// as a vector.
func (s *Stack) Collect(start int) vector.Vector {
	v := vector.Empty
	for _, c := range s.above("collect", start) {
		v = v.Cons(c)
	}
	s.PopTo(start)
	return v
}

// CollectInto pops the values at index start and above, and inserts them into
// arr before index at. It returns the index right after the inserted values.
// The stack is left unchanged if the values cannot be inserted.
func (s *Stack) CollectInto(start int, arr *gc.Array, at int) (int, error) {
	next, err := arr.Insert(at, s.above("collect into", start))
	if err != nil {
		return 0, err
	}
	s.PopTo(start)
	return next, nil
}

func (s *Stack) above(op string, start int) []cell.Value {
	if start < 0 || start > len(s.cells) {
		errs.Faultf(op, "index %d is above the top %d", start, len(s.cells))
	}
	return s.cells[start:]
}

// Each calls f with each value from bottom to top.
func (s *Stack) Each(f func(cell.Value)) {
	for _, v := range s.cells {
		f(v)
	}
}

// Roots enumerates the values on the stack for the collector.
func (s *Stack) Roots(_ func(*gc.Array), markValue func(cell.Value)) {
	s.Each(markValue)
}
