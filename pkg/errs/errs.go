// Package errs declares error types used by the stack and frame packages.
package errs

import (
	"fmt"
	"strconv"
)

// StackOverflow is returned when the data stack would grow past its limit. It
// is recoverable and is delivered to the nearest trap.
type StackOverflow struct {
	Limit int
}

func (e StackOverflow) Error() string {
	return fmt.Sprintf("stack overflow: data stack cannot grow past %d values", e.Limit)
}

// OutOfRange encodes an error where a value is not within the valid range. A
// ValidHigh of -1 means there is no upper bound.
type OutOfRange struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    int
}

func (e OutOfRange) Error() string {
	if e.ValidHigh == -1 {
		return fmt.Sprintf("out of range: %s must be %d or more, but is %d",
			e.What, e.ValidLow, e.Actual)
	}
	if e.ValidHigh < e.ValidLow {
		return fmt.Sprintf("out of range: %v has no valid value, but is %v",
			e.What, e.Actual)
	}
	return fmt.Sprintf("out of range: %s must be from %d to %d, but is %d",
		e.What, e.ValidLow, e.ValidHigh, e.Actual)
}

// ArityMismatch encodes an error where the expected number of values is out of
// the valid range. A negative ValidHigh means there is no upper bound.
type ArityMismatch struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    int
}

func (e ArityMismatch) Error() string {
	switch {
	case e.ValidHigh == e.ValidLow:
		return fmt.Sprintf("arity mismatch: %v must be %v, but is %v",
			e.What, nValues(e.ValidLow), nValues(e.Actual))
	case e.ValidHigh == -1:
		return fmt.Sprintf("arity mismatch: %v must be %v or more values, but is %v",
			e.What, e.ValidLow, nValues(e.Actual))
	default:
		return fmt.Sprintf("arity mismatch: %v must be %v to %v values, but is %v",
			e.What, e.ValidLow, e.ValidHigh, nValues(e.Actual))
	}
}

func nValues(n int) string {
	if n == 1 {
		return "1 value"
	}
	return strconv.Itoa(n) + " values"
}

// NoSuchParam is returned when a parameter is named that a function does not
// have.
type NoSuchParam struct {
	Func string
	Name string
}

func (e NoSuchParam) Error() string {
	return fmt.Sprintf("no such parameter: %s has no parameter %s", e.Func, e.Name)
}

// BadValue is returned when a value cannot be stored where it was given.
type BadValue struct {
	What   string
	Valid  string
	Actual string
}

func (e BadValue) Error() string {
	return fmt.Sprintf("bad value: %v must be %v, but is %v", e.What, e.Valid, e.Actual)
}

// Locked is returned when a fixed-size buffer is asked to grow.
type Locked struct {
	What string
}

func (e Locked) Error() string {
	return "locked: " + e.What + " is fixed-size"
}

// GuardLeak is returned when guard stacks are not balanced at a checkpoint
// such as the end of a trap.
type GuardLeak struct {
	Arrays int
	Values int
}

func (e GuardLeak) Error() string {
	return fmt.Sprintf("guard leak: %d array guards and %d value guards left", e.Arrays, e.Values)
}

// Fault is a violated invariant: an oversized chunk request or a LIFO protocol
// violation. It is never returned; it is the value of a panic.
type Fault struct {
	Op     string
	Reason string
}

func (e Fault) Error() string {
	return "fault in " + e.Op + ": " + e.Reason
}

// Faultf panics with a Fault.
func Faultf(op, format string, args ...any) {
	panic(Fault{op, fmt.Sprintf(format, args...)})
}
