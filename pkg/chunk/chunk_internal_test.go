package chunk

import (
	"testing"

	"github.com/iarwain/r3/pkg/cell"
)

func TestDebug_PoisonsReleasedSlots(t *testing.T) {
	c := New(16, true)
	h := c.Push(3)
	vs := c.Values(h)
	for i, v := range vs {
		if !v.IsTrash() {
			t.Errorf("fresh slot %d is %v, want trash", i, v)
		}
		vs[i] = cell.FromInt(i)
	}
	off := h.off
	c.Drop(h)

	cells := c.root.cells
	if !cells[off].IsEnd() {
		t.Errorf("header of dropped chunk is %v, want END", cells[off])
	}
	for i := off + 1; i < off+4; i++ {
		if !cells[i].IsTrash() {
			t.Errorf("released slot %d is %v, want trash", i, cells[i])
		}
	}
}

func TestRelease_ClearsSlots(t *testing.T) {
	c := New(16, false)
	h := c.Push(2)
	vs := c.Values(h)
	vs[0] = cell.FromString("x")
	vs[1] = cell.FromString("y")
	off := h.off
	c.Drop(h)
	for i := off; i < off+3; i++ {
		if c.root.cells[i] != cell.EndValue {
			t.Errorf("released slot %d is %v, want END", i, c.root.cells[i])
		}
	}
}

func TestHeadRecord(t *testing.T) {
	c := New(10, false)
	c.Push(3)
	c.Push(3)
	c.Push(3)
	c.Push(1)
	for i, rec := range c.records {
		want := 0
		if rec.page != c.root {
			want = 3
		}
		if rec.head != want {
			t.Errorf("record %d has head %d, want %d", i, rec.head, want)
		}
	}
}
