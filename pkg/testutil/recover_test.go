package testutil

import (
	"fmt"
	"testing"

	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/tt"
)

func TestRecover(t *testing.T) {
	tt.Test(t, tt.Fn("Recover", Recover), tt.Table{
		tt.Args(func() {}).Rets(nil),
		tt.Args(func() {
			panic("unreachable")
		}).Rets("unreachable"),
	})
}

type fakeT struct{ errors []string }

func (*fakeT) Helper() {}

func (t *fakeT) Errorf(format string, args ...any) {
	t.errors = append(t.errors, fmt.Sprintf(format, args...))
}

func TestWantFault(t *testing.T) {
	ft := &fakeT{}
	WantFault(ft, "drop", func() { errs.Faultf("drop", "not the top") })
	if len(ft.errors) != 0 {
		t.Errorf("WantFault reported %v for a matching fault", ft.errors)
	}
	WantFault(ft, "drop", func() { errs.Faultf("push", "too big") })
	WantFault(ft, "drop", func() {})
	if len(ft.errors) != 2 {
		t.Errorf("WantFault reported %d errors, want 2", len(ft.errors))
	}
}
