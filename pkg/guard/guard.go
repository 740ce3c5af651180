// Package guard implements the guard stacks, which protect allocations that
// are not yet reachable from any root from the collector.
//
// Guards are pushed and popped in LIFO order. They are not meant to
// accumulate: the stacks must be back where they were at the end of each
// trap, and empty at the end of a top-level command.
package guard

import (
	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/gc"
)

// Stacks holds one guard stack for arrays and one for cells.
type Stacks struct {
	arrays stack[*gc.Array]
	values stack[*cell.Value]
}

// GuardArray protects an array until the matching UnguardArray.
func (s *Stacks) GuardArray(a *gc.Array) { s.arrays.push(a) }

// UnguardArray removes the most recent array guard, which must be for a.
func (s *Stacks) UnguardArray(a *gc.Array) { s.arrays.pop("unguard array", a) }

// GuardValue protects the cell pointed to by v, whatever it holds when the
// collector runs, until the matching UnguardValue.
func (s *Stacks) GuardValue(v *cell.Value) { s.values.push(v) }

// UnguardValue removes the most recent cell guard, which must be for v.
func (s *Stacks) UnguardValue(v *cell.Value) { s.values.pop("unguard value", v) }

// Depths returns the number of array and cell guards.
func (s *Stacks) Depths() (arrays, values int) {
	return len(s.arrays), len(s.values)
}

// TruncateTo drops guards so that there are at most the given numbers left.
// It is used when a trap discards everything done since it was set up.
func (s *Stacks) TruncateTo(arrays, values int) {
	s.arrays.truncate(arrays)
	s.values.truncate(values)
}

// AssertEmpty returns an errs.GuardLeak if any guard is left.
func (s *Stacks) AssertEmpty() error {
	if len(s.arrays) == 0 && len(s.values) == 0 {
		return nil
	}
	return errs.GuardLeak{Arrays: len(s.arrays), Values: len(s.values)}
}

// Roots enumerates the guarded arrays and cells for the collector.
func (s *Stacks) Roots(markArray func(*gc.Array), markValue func(cell.Value)) {
	for _, a := range s.arrays {
		markArray(a)
	}
	for _, v := range s.values {
		markValue(*v)
	}
}

type stack[T comparable] []T

func (s *stack[T]) push(v T) { *s = append(*s, v) }

func (s *stack[T]) pop(op string, v T) {
	n := len(*s)
	if n == 0 {
		errs.Faultf(op, "guard stack is empty")
	}
	if (*s)[n-1] != v {
		errs.Faultf(op, "not the most recent guard")
	}
	var zero T
	(*s)[n-1] = zero
	*s = (*s)[:n-1]
}

func (s *stack[T]) truncate(n int) {
	if n < len(*s) {
		clear((*s)[n:])
		*s = (*s)[:n]
	}
}
