// Package cell implements the value cell held in argument slots, the data
// stack and managed buffers.
//
// Only what the stack machinery needs is modeled: a kind tag, an opaque
// payload, and the special kinds END, VOID and trash.
package cell

import (
	"fmt"
	"strconv"
)

// Kind identifies what a Value holds.
type Kind uint8

// Kinds of values. The zero Kind is End, so zeroed memory reads as
// terminated.
const (
	// End terminates a sequence of cells. In an argument slot it means that
	// nothing has been supplied yet.
	End Kind = iota
	// Header is the bookkeeping slot at the start of a chunk. It reads as
	// End, which terminates the values of the chunk before it.
	Header
	// Trash is written over released cells in debug mode.
	Trash
	// Void is the absence of a value; in an exemplar it marks a parameter
	// that is not specialized.
	Void
	Int
	String
	Word
	// Block holds a reference to a managed buffer.
	Block
	// Func holds a callable.
	Func
)

var kindNames = [...]string{
	End: "end", Header: "header", Trash: "trash", Void: "void",
	Int: "int", String: "string", Word: "word", Block: "block", Func: "func",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a cell. It is comparable; two Values are == when they have the same
// kind and identical payloads.
type Value struct {
	kind Kind
	data any
}

// Predefined special values.
var (
	EndValue   = Value{}
	VoidValue  = Value{kind: Void}
	TrashValue = Value{kind: Trash}
)

// HeaderOf returns a chunk header cell recording the chunk size in slots.
func HeaderOf(size int) Value { return Value{Header, size} }

// FromInt returns an integer cell.
func FromInt(i int) Value { return Value{Int, i} }

// FromString returns a string cell.
func FromString(s string) Value { return Value{String, s} }

// FromWord returns a word cell.
func FromWord(s string) Value { return Value{Word, s} }

// FromBlock returns a cell referencing a buffer. The buffer is traced by the
// collector through this cell.
func FromBlock(b any) Value { return Value{Block, b} }

// FromFunc returns a cell holding a callable.
func FromFunc(f any) Value { return Value{Func, f} }

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// Payload returns the raw payload.
func (v Value) Payload() any { return v.data }

// IsEnd reports whether the cell terminates a sequence. Chunk headers count as
// END.
func (v Value) IsEnd() bool { return v.kind == End || v.kind == Header }

// IsVoid reports whether the cell holds no value.
func (v Value) IsVoid() bool { return v.kind == Void }

// IsTrash reports whether the cell was poisoned on release.
func (v Value) IsTrash() bool { return v.kind == Trash }

// IsSet reports whether the cell holds a legitimate value.
func (v Value) IsSet() bool { return v.kind > Void }

// Int returns the integer payload.
func (v Value) Int() (int, bool) {
	i, ok := v.data.(int)
	return i, ok && v.kind == Int
}

// Str returns the string payload of a string or word cell.
func (v Value) Str() (string, bool) {
	s, ok := v.data.(string)
	return s, ok && (v.kind == String || v.kind == Word)
}

// HeaderSize returns the size recorded in a chunk header.
func (v Value) HeaderSize() (int, bool) {
	n, ok := v.data.(int)
	return n, ok && v.kind == Header
}

// Repr returns a representation of the value.
func (v Value) Repr() string {
	switch v.kind {
	case End, Trash, Void:
		return "<" + v.kind.String() + ">"
	case Header:
		return fmt.Sprintf("<header %v>", v.data)
	case Int:
		return strconv.Itoa(v.data.(int))
	case String:
		return strconv.Quote(v.data.(string))
	case Word:
		return v.data.(string)
	default:
		if s, ok := v.data.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("<%v %p>", v.kind, v.data)
	}
}

func (v Value) String() string { return v.Repr() }
