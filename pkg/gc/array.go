// Package gc implements buffers of cells whose lifetime may be handed over to
// the collector, and the contract between the collector and its roots.
package gc

import (
	"strings"

	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/errs"
)

// Flag is a bit set of Array properties.
type Flag uint8

const (
	// Managed means the collector owns the reclamation of the array.
	Managed Flag = 1 << iota
	// FixedSize forbids growing or shrinking the array.
	FixedSize
	// Marked is set on reachable arrays during a collection.
	Marked
	// Inaccessible is set when the array has been reclaimed or freed.
	Inaccessible
)

// Array is a buffer of cells.
type Array struct {
	cells []cell.Value
	flags Flag
}

// NewArray returns an unmanaged array of n cells, all END.
func NewArray(n int) *Array {
	return &Array{cells: make([]cell.Value, n)}
}

// ArrayOf returns an unmanaged array holding the given values.
func ArrayOf(vs ...cell.Value) *Array {
	return &Array{cells: append([]cell.Value(nil), vs...)}
}

// Len returns the number of cells.
func (a *Array) Len() int { return len(a.cells) }

// At returns the cell at index i.
func (a *Array) At(i int) cell.Value {
	a.checkAccessible("at")
	return a.cells[i]
}

// Set sets the cell at index i.
func (a *Array) Set(i int, v cell.Value) {
	a.checkAccessible("set")
	a.cells[i] = v
}

// Cells returns the cells of the array. The returned slice aliases the array
// and must not be retained across an Insert.
func (a *Array) Cells() []cell.Value {
	a.checkAccessible("cells")
	return a.cells
}

// Insert inserts values before index at, and returns the index right after the
// inserted values. Fixed-size arrays cannot be inserted into.
func (a *Array) Insert(at int, vs []cell.Value) (int, error) {
	a.checkAccessible("insert")
	if a.Has(FixedSize) {
		return 0, errs.Locked{What: "array"}
	}
	if at < 0 || at > len(a.cells) {
		return 0, errs.OutOfRange{What: "insert index", ValidLow: 0, ValidHigh: len(a.cells), Actual: at}
	}
	a.cells = append(a.cells[:at], append(append([]cell.Value(nil), vs...), a.cells[at:]...)...)
	return at + len(vs), nil
}

// Has reports whether all the given flags are set.
func (a *Array) Has(f Flag) bool { return a.flags&f == f }

// SetFixedSize forbids resizing the array.
func (a *Array) SetFixedSize() { a.flags |= FixedSize }

// IsManaged reports whether the collector owns the array.
func (a *Array) IsManaged() bool { return a.Has(Managed) }

// IsAccessible reports whether the array can still be used.
func (a *Array) IsAccessible() bool { return !a.Has(Inaccessible) }

func (a *Array) String() string {
	if !a.IsAccessible() {
		return "<inaccessible>"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.cells {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.Repr())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a *Array) checkAccessible(op string) {
	if !a.IsAccessible() {
		errs.Faultf(op, "array is inaccessible")
	}
}

func (a *Array) release() {
	a.flags |= Inaccessible
	a.flags &^= Managed | Marked
	a.cells = nil
}
