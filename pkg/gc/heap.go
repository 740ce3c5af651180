package gc

import (
	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/logutil"
)

var logger = logutil.GetLogger("[gc] ")

// Roots is implemented by holders of references that the collector must treat
// as reachable. Roots calls markArray for each array it holds directly, and
// markValue for each cell.
type Roots interface {
	Roots(markArray func(*Array), markValue func(cell.Value))
}

// RootsFunc adapts a function to the Roots interface.
type RootsFunc func(markArray func(*Array), markValue func(cell.Value))

// Roots calls f.
func (f RootsFunc) Roots(markArray func(*Array), markValue func(cell.Value)) {
	f(markArray, markValue)
}

// HeapStats keeps statistics of a Heap.
type HeapStats struct {
	Managed  int `json:"managed"`
	Recycles int `json:"recycles"`
	Swept    int `json:"swept"`
}

// Heap keeps track of managed arrays. Its collection is a plain mark and sweep
// over arrays; it exists to honor the root contract, not to be fast.
type Heap struct {
	managed []*Array
	stats   HeapStats
}

// NewHeap creates an empty Heap.
func NewHeap() *Heap { return &Heap{} }

// Manage hands the array over to the collector.
func (h *Heap) Manage(a *Array) {
	if a.IsManaged() {
		errs.Faultf("manage", "array is already managed")
	}
	a.checkAccessible("manage")
	a.flags |= Managed
	h.managed = append(h.managed, a)
}

// Free releases an unmanaged array. Managed arrays can only be reclaimed by
// the collector.
func (h *Heap) Free(a *Array) {
	if a.IsManaged() {
		errs.Faultf("free", "array is managed")
	}
	a.release()
}

// Stats returns statistics of the heap.
func (h *Heap) Stats() HeapStats {
	s := h.stats
	s.Managed = len(h.managed)
	return s
}

// Recycle marks everything reachable from roots and reclaims the managed
// arrays that were not reached. It returns the number of reclaimed arrays.
func (h *Heap) Recycle(roots ...Roots) int {
	// Arrays are appended when first marked; the ones after i still have to
	// be scanned.
	var marked []*Array
	markArray := func(a *Array) {
		if a != nil && a.IsAccessible() && !a.Has(Marked) {
			a.flags |= Marked
			marked = append(marked, a)
		}
	}
	markValue := func(v cell.Value) {
		if v.Kind() == cell.Block {
			if a, ok := v.Payload().(*Array); ok {
				markArray(a)
			}
		}
	}
	for _, r := range roots {
		r.Roots(markArray, markValue)
	}
	for i := 0; i < len(marked); i++ {
		for _, v := range marked[i].cells {
			markValue(v)
		}
	}

	kept := h.managed[:0]
	swept := 0
	for _, a := range h.managed {
		if a.Has(Marked) {
			kept = append(kept, a)
		} else {
			a.release()
			swept++
		}
	}
	clear(h.managed[len(kept):])
	h.managed = kept
	for _, a := range marked {
		a.flags &^= Marked
	}

	h.stats.Recycles++
	h.stats.Swept += swept
	logger.Printf("recycle: kept %d, swept %d", len(kept), swept)
	return swept
}
