// Package chunk implements the chunk stack, a region allocator for the
// argument slots of function calls.
//
// Chunks are carved sequentially out of fixed-size pages, in their order on
// the stack. A page is only allocated when a push does not fit in the current
// page and there is no spare page left from an earlier push. Chunks must be
// dropped in the reverse order they were pushed.
//
// Each chunk starts with a header slot, followed by its values. A header slot
// reads as END, so the header of the next chunk terminates the values of the
// chunk before it; when a chunk is pushed, the slot right after it is set to
// END until another chunk takes its place. Hence a push needs room for its
// header, its values and one more slot.
package chunk

import (
	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/logutil"
)

var logger = logutil.GetLogger("[chunk] ")

const (
	// Number of slots taken by the header of a chunk.
	headerSlots = 1
	// Number of slots that must remain after a chunk for its END sentinel.
	sentinelSlots = 1
)

// MinPageSlots is the smallest page that can hold a chunk with one value.
const MinPageSlots = headerSlots + 1 + sentinelSlots

type page struct {
	cells []cell.Value
	next  *page
	// Position in the page chain; the root page is 0.
	seq int
}

// Bookkeeping of a pushed chunk. The chunk before it is the previous record.
type record struct {
	page *page
	// Offset of the header slot.
	off int
	// Size in slots, including the header.
	size int
	// Slots left in the page after this chunk.
	left int
	// Index of the first record in the same page.
	head int
}

// Handle identifies a pushed chunk. The zero Handle identifies no chunk.
type Handle struct {
	page  *page
	off   int
	n     int
	depth int
}

// Len returns the number of values in the chunk.
func (h Handle) Len() int { return h.n }

// Depth returns the position of the chunk on the chunk stack; the first pushed
// chunk has depth 1.
func (h Handle) Depth() int { return h.depth }

// Mark is a recorded depth of the chunk stack, to be passed to Truncate.
type Mark struct {
	page  *page
	depth int
}

// Depth returns the number of chunks pushed when the mark was taken.
func (m Mark) Depth() int { return m.depth - 1 }

// Stats keeps statistics of a Chunker.
type Stats struct {
	// Pages currently allocated, including the root page and the spare.
	Pages int `json:"pages"`
	// Pages allocated and freed over the lifetime of the Chunker.
	PagesAllocated int `json:"pagesAllocated"`
	PagesFreed     int `json:"pagesFreed"`
	// Current and maximum number of pushed chunks.
	Depth    int `json:"depth"`
	MaxDepth int `json:"maxDepth"`
	Pushes   int `json:"pushes"`
}

// Chunker is a chunk stack.
type Chunker struct {
	pageSlots int
	debug     bool
	root      *page
	records   []record
	stats     Stats
}

// New creates a Chunker whose pages hold the given number of slots. When debug
// is true, released slots are poisoned with trash instead of being cleared.
//
// The root page is allocated right away and holds an empty chunk, so the
// stack always has a top chunk.
func New(pageSlots int, debug bool) *Chunker {
	if pageSlots < MinPageSlots {
		errs.Faultf("new", "page of %d slots cannot hold a chunk, need at least %d",
			pageSlots, MinPageSlots)
	}
	c := &Chunker{pageSlots: pageSlots, debug: debug}
	c.root = c.newPage(0)
	c.records = append(c.records, record{
		page: c.root, size: headerSlots, left: pageSlots - headerSlots})
	c.root.cells[0] = cell.HeaderOf(headerSlots)
	return c
}

// PageSlots returns the number of slots in a page.
func (c *Chunker) PageSlots() int { return c.pageSlots }

// MaxValues returns the largest number of values a single chunk can hold.
func (c *Chunker) MaxValues() int { return c.pageSlots - headerSlots - sentinelSlots }

// Push pushes a chunk of n values and returns its handle. The values are END in
// release mode and trash in debug mode; the caller must fill them before the
// collector can see them.
//
// Push panics with an errs.Fault if n values do not fit in one page.
func (c *Chunker) Push(n int) Handle {
	if n < 0 {
		errs.Faultf("push", "negative number of values %d", n)
	}
	size := headerSlots + n
	top := &c.records[len(c.records)-1]
	var rec record
	if top.left >= size+sentinelSlots {
		rec = record{
			page: top.page, off: top.off + top.size, size: size,
			left: top.left - size, head: top.head}
	} else {
		if size+sentinelSlots > c.pageSlots {
			errs.Faultf("push", "%d values need %d slots, but a page only has %d",
				n, size+sentinelSlots, c.pageSlots)
		}
		p := top.page
		if p.next == nil {
			p.next = c.newPage(p.seq + 1)
		} else if p.next.next != nil {
			errs.Faultf("push", "more than one spare page after page %d", p.seq)
		}
		rec = record{
			page: p.next, size: size, left: c.pageSlots - size,
			head: len(c.records)}
	}

	cells := rec.page.cells
	cells[rec.off] = cell.HeaderOf(size)
	cells[rec.off+size] = cell.EndValue
	if c.debug {
		fill(cells[rec.off+headerSlots:rec.off+size], cell.TrashValue)
	}
	c.records = append(c.records, rec)

	c.stats.Pushes++
	if d := len(c.records) - 1; d > c.stats.MaxDepth {
		c.stats.MaxDepth = d
	}
	return Handle{rec.page, rec.off, n, len(c.records) - 1}
}

// Drop drops the top chunk, which must be the one identified by h; otherwise
// Drop panics with an errs.Fault.
//
// When the chunk was the first one in its page, the page becomes the spare
// page for the next push that overflows, and the page after it, if any, is
// freed.
func (c *Chunker) Drop(h Handle) {
	last := len(c.records) - 1
	if last == 0 {
		errs.Faultf("drop", "chunk stack is empty")
	}
	rec := c.records[last]
	if h.depth != last || h.page != rec.page || h.off != rec.off {
		errs.Faultf("drop", "chunk at depth %d is not the top chunk at depth %d",
			h.depth, last)
	}
	c.records = c.records[:last]

	cells := rec.page.cells
	// The header slot of the dropped chunk now terminates the new top chunk.
	cells[rec.off] = cell.EndValue
	c.scrub(cells[rec.off+headerSlots : rec.off+rec.size])

	if rec.head == last {
		c.freeAfter(rec.page)
	}
}

// Checkpoint records the current depth of the chunk stack.
func (c *Chunker) Checkpoint() Mark {
	return Mark{c.records[len(c.records)-1].page, len(c.records)}
}

// Truncate drops all chunks pushed after m was taken, at once. It is a no-op if
// no chunk was pushed since. Pages at or below the page of the mark are never
// freed; one page after it is kept as spare and the rest are freed.
func (c *Chunker) Truncate(m Mark) {
	n := len(c.records)
	if m.depth < 1 || m.depth > n || c.records[m.depth-1].page != m.page {
		errs.Faultf("truncate", "mark at depth %d is not on the chunk stack", m.Depth())
	}
	if m.depth == n {
		return
	}
	oldTop := c.records[n-1]
	top := c.records[m.depth-1]
	c.records = c.records[:m.depth]

	cells := top.page.cells
	end := top.off + top.size
	if oldTop.page == top.page {
		c.scrub(cells[end : oldTop.off+oldTop.size])
	} else {
		c.scrub(cells[end:])
		if spare := top.page.next; spare != nil {
			c.scrub(spare.cells)
		}
	}
	cells[end] = cell.EndValue

	if spare := top.page.next; spare != nil {
		c.freeAfter(spare)
	}
}

// Values returns the values of a live chunk. The returned slice cannot be
// appended to in place.
func (c *Chunker) Values(h Handle) []cell.Value {
	c.check("values", h)
	start := h.off + headerSlots
	return h.page.cells[start : start+h.n : start+h.n]
}

// Terminated reports whether the slot after the values of a live chunk reads
// as END.
func (c *Chunker) Terminated(h Handle) bool {
	c.check("terminated", h)
	return h.page.cells[h.off+headerSlots+h.n].IsEnd()
}

// Top returns the handle of the top chunk. When nothing has been pushed, it is
// the handle of the empty chunk at the bottom, which cannot be dropped.
func (c *Chunker) Top() Handle {
	last := len(c.records) - 1
	rec := c.records[last]
	return Handle{rec.page, rec.off, rec.size - headerSlots, last}
}

// Depth returns the number of pushed chunks.
func (c *Chunker) Depth() int { return len(c.records) - 1 }

// Stats returns statistics of the Chunker.
func (c *Chunker) Stats() Stats {
	s := c.stats
	s.Depth = c.Depth()
	return s
}

// Shutdown frees all pages. All pushed chunks must have been dropped. The
// Chunker must not be used afterwards.
func (c *Chunker) Shutdown() error {
	if c.root == nil {
		return errs.Fault{Op: "shutdown", Reason: "already shut down"}
	}
	if d := c.Depth(); d != 0 {
		return errs.Fault{Op: "shutdown", Reason: "chunk stack not empty"}
	}
	c.freeAfter(c.root)
	c.freePage(c.root)
	c.root = nil
	c.records = nil
	return nil
}

func (c *Chunker) check(op string, h Handle) {
	if h.depth < 1 || h.depth >= len(c.records) {
		errs.Faultf(op, "chunk at depth %d is not live", h.depth)
	}
	rec := c.records[h.depth]
	if rec.page != h.page || rec.off != h.off {
		errs.Faultf(op, "chunk at depth %d has been dropped", h.depth)
	}
}

func (c *Chunker) newPage(seq int) *page {
	c.stats.Pages++
	c.stats.PagesAllocated++
	logger.Printf("allocated page %d of %d slots", seq, c.pageSlots)
	p := &page{cells: make([]cell.Value, c.pageSlots), seq: seq}
	if c.debug {
		fill(p.cells, cell.TrashValue)
	}
	return p
}

// Frees all pages after p.
func (c *Chunker) freeAfter(p *page) {
	next := p.next
	p.next = nil
	for next != nil {
		q := next.next
		c.freePage(next)
		next = q
	}
}

func (c *Chunker) freePage(p *page) {
	c.stats.Pages--
	c.stats.PagesFreed++
	logger.Printf("freed page %d", p.seq)
	p.cells = nil
	p.next = nil
}

// Releases cells. In debug mode they are poisoned so that a use after release
// can be detected; otherwise they are cleared to END so that the Go runtime
// can reclaim whatever they referenced.
func (c *Chunker) scrub(cells []cell.Value) {
	if c.debug {
		fill(cells, cell.TrashValue)
	} else {
		clear(cells)
	}
}

func fill(cells []cell.Value, v cell.Value) {
	for i := range cells {
		cells[i] = v
	}
}
