package testutil

import "github.com/iarwain/r3/pkg/errs"

// Errorfer wraps the Helper and Errorf methods. It is a subset of
// [testing.TB].
type Errorfer interface {
	Helper()
	Errorf(format string, args ...any)
}

// WantFault calls f and reports an error unless it panics with an errs.Fault
// in the given op.
func WantFault(t Errorfer, op string, f func()) {
	t.Helper()
	r := Recover(f)
	fault, ok := r.(errs.Fault)
	if !ok {
		t.Errorf("recovered %v, want errs.Fault", r)
	} else if fault.Op != op {
		t.Errorf("got fault in %q, want fault in %q", fault.Op, op)
	}
}
