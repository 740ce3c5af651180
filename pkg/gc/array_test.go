package gc_test

import (
	"testing"

	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/errs"
	. "github.com/iarwain/r3/pkg/gc"
	. "github.com/iarwain/r3/pkg/tt"
)

func TestNewArray_IsEnded(t *testing.T) {
	a := NewArray(3)
	for i := 0; i < a.Len(); i++ {
		if !a.At(i).IsEnd() {
			t.Errorf("cell %d is %v, want END", i, a.At(i))
		}
	}
	if a.IsManaged() || !a.IsAccessible() {
		t.Errorf("new array has wrong flags")
	}
}

func TestInsert(t *testing.T) {
	one, two, three := cell.FromInt(1), cell.FromInt(2), cell.FromInt(3)
	insert := func(at int, vs ...cell.Value) (string, int, error) {
		a := ArrayOf(one, three)
		i, err := a.Insert(at, vs)
		return a.String(), i, err
	}
	Test(t, Fn("Insert", insert), Table{
		Args(1, two).Rets("[1 2 3]", 2, nil),
		Args(2, two, two).Rets("[1 3 2 2]", 4, nil),
		Args(0).Rets("[1 3]", 0, nil),
		Args(3, two).Rets("[1 3]", 0,
			errs.OutOfRange{What: "insert index", ValidLow: 0, ValidHigh: 2, Actual: 3}),
	})
}

func TestInsert_FixedSize(t *testing.T) {
	a := ArrayOf(cell.FromInt(1))
	a.SetFixedSize()
	if _, err := a.Insert(0, []cell.Value{cell.FromInt(0)}); err != (errs.Locked{What: "array"}) {
		t.Errorf("Insert into fixed-size array -> %v, want Locked", err)
	}
}

func TestString(t *testing.T) {
	a := ArrayOf(cell.FromWord("a"), cell.FromString("b"), cell.VoidValue)
	if s := a.String(); s != `[a "b" <void>]` {
		t.Errorf("String() -> %q", s)
	}
	NewHeap().Free(a)
	if s := a.String(); s != "<inaccessible>" {
		t.Errorf("String() of freed array -> %q", s)
	}
}
