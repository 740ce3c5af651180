// Package tt supports table-driven tests with little boilerplate.
//
// A table is a list of cases built with Args(...).Rets(...). Test calls the
// function under test with the arguments of each case and compares the return
// values with go-cmp, or with a Matcher when one is given:
//
//	Test(t, Fn("Parse", Parse), Table{
//		Args("page-slots: 64\n").Rets(cfg, nil),
//		Args("page-slots: 2\n").Rets(Any, ErrorIs(errs.OutOfRange{...})),
//	})
package tt

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Table is a list of test cases.
type Table []*Case

// Case is a test case. It is created by Args, and Rets adds expectations to
// it.
type Case struct {
	args []any
	rets [][]any
}

// Args returns a new Case with the given arguments.
func Args(args ...any) *Case { return &Case{args: args} }

// Rets adds an expectation on the return values and returns the receiver. Each
// value is either a Matcher or compared with cmp.Equal, unexported fields
// included.
func (c *Case) Rets(rets ...any) *Case {
	c.rets = append(c.rets, rets)
	return c
}

// FnToTest is a function under test.
type FnToTest struct {
	name string
	body any
}

// Fn returns a FnToTest with a name used in error messages.
func Fn(name string, body any) *FnToTest { return &FnToTest{name, body} }

// T is the subset of testing.T used by Test.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Test runs all the cases of a table against fn.
func Test(t T, fn *FnToTest, tests Table) {
	t.Helper()
	for _, test := range tests {
		rets := call(fn.body, test.args)
		for _, want := range test.rets {
			if len(want) != len(rets) {
				t.Errorf("%s(%s) returns %d values, test wants %d",
					fn.name, sprintArgs(test.args), len(rets), len(want))
				continue
			}
			if !match(want, rets) {
				t.Errorf("%s(%s) returns (-want +got):\n%s",
					fn.name, sprintArgs(test.args), cmp.Diff(want, rets, exportAll))
			}
		}
	}
}

// RetValue is the argument type of Matcher.Match. It has its own name so that
// Matcher is not implemented by accident.
type RetValue any

// Matcher decides whether a return value is acceptable.
type Matcher interface {
	Match(RetValue) bool
}

// Any matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(RetValue) bool { return true }

// ErrorIs returns a Matcher that matches errors for which errors.Is(err,
// target) is true.
func ErrorIs(target error) Matcher { return errorIs{target} }

type errorIs struct{ target error }

func (m errorIs) Match(v RetValue) bool {
	err, ok := v.(error)
	return ok && errors.Is(err, m.target)
}

// ErrorPrefix returns a Matcher that matches errors whose message starts with
// the given prefix.
func ErrorPrefix(prefix string) Matcher { return errorPrefix(prefix) }

type errorPrefix string

func (m errorPrefix) Match(v RetValue) bool {
	err, ok := v.(error)
	return ok && strings.HasPrefix(err.Error(), string(m))
}

var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

func match(matchers, rets []any) bool {
	for i, m := range matchers {
		if matcher, ok := m.(Matcher); ok {
			if !matcher.Match(rets[i]) {
				return false
			}
		} else if !cmp.Equal(m, rets[i], exportAll) {
			return false
		}
	}
	return true
}

func sprintArgs(args []any) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, arg)
	}
	return sb.String()
}

func call(fn any, args []any) []any {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// reflect.ValueOf(nil) is the zero Value, which Call rejects.
			var v any
			in[i] = reflect.ValueOf(&v).Elem()
		} else {
			in[i] = reflect.ValueOf(arg)
		}
	}
	out := reflect.ValueOf(fn).Call(in)
	rets := make([]any, len(out))
	for i, v := range out {
		rets[i] = v.Interface()
	}
	return rets
}
