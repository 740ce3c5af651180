// Package fn implements function values and the resolution of composed
// functions to the function whose parameter list a call frame is built for.
//
// A specialization, adaptation or chain has fewer or borrowed parameters; the
// code that eventually runs expects the full parameter list of the innermost
// native or durable function. That function is the "underlying" one. For
// specializations, the exemplar holds one cell per underlying parameter:
// either the specialized value or VOID.
package fn

import (
	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/dstack"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/gc"
	"github.com/iarwain/r3/pkg/guard"
)

// Debug makes Resolve re-derive its result by walking the composition and
// check it against the cached one.
var Debug = false

// Param describes a parameter.
type Param struct {
	Name string
	// Refinements are optional; they are VOID when not supplied.
	Refinement bool
}

// Params builds a parameter list from names. Names starting with "/" are
// refinements.
func Params(names ...string) []Param {
	ps := make([]Param, len(names))
	for i, name := range names {
		if len(name) > 1 && name[0] == '/' {
			ps[i] = Param{name[1:], true}
		} else {
			ps[i] = Param{Name: name}
		}
	}
	return ps
}

// Context is what a running function body sees: the arguments of its frame
// and the stacks of the call.
type Context interface {
	// NumArgs returns the number of argument slots, which is the arity of the
	// underlying function.
	NumArgs() int
	// Arg returns the argument in the 1-based slot n.
	Arg(n int) cell.Value
	// SetArg sets the argument in slot n.
	SetArg(n int, v cell.Value)
	// Varlist returns the managed argument storage of a durable function, and
	// nil for other functions.
	Varlist() *gc.Array
	Data() *dstack.Stack
	Guards() *guard.Stacks
	Heap() *gc.Heap
	// Apply calls a function in a new frame.
	Apply(c Callable, args ...cell.Value) (cell.Value, error)
}

// Body is the code of a function.
type Body func(ctx Context) (cell.Value, error)

// Callable is a function value. The set of implementations is closed: *Native,
// *Durable, *Specialization, *Adaptation and *Chain.
type Callable interface {
	Name() string
	// Params returns the parameters the function takes at a call site.
	Params() []Param
	resolution() resolution
}

type resolution struct {
	underlying  Callable
	specializer *Specialization
}

type primitive struct {
	name   string
	params []Param
	body   Body
}

func (p *primitive) Name() string    { return p.name }
func (p *primitive) Params() []Param { return p.params }

// Body returns the code of the function.
func (p *primitive) Body() Body { return p.body }

// SetBody sets the code of the function. It allows bodies to refer to the
// function itself.
func (p *primitive) SetBody(body Body) { p.body = body }

func (p *primitive) String() string { return "<fn " + p.name + ">" }

// Native is a function with a fixed parameter list, whose arguments do not
// outlive the call.
type Native struct{ primitive }

// NewNative creates a native function.
func NewNative(name string, params []Param, body Body) *Native {
	return &Native{primitive{name, params, body}}
}

func (f *Native) resolution() resolution { return resolution{f, nil} }

// Durable is a user function whose arguments may be referenced after the call
// returns, so they are stored in a managed array.
type Durable struct{ primitive }

// NewDurable creates a durable function.
func NewDurable(name string, params []Param, body Body) *Durable {
	return &Durable{primitive{name, params, body}}
}

func (f *Durable) resolution() resolution { return resolution{f, nil} }

// Specialization binds some parameters of a function to fixed values.
type Specialization struct {
	base     Callable
	exemplar []cell.Value
	params   []Param
	res      resolution
}

// Specialize creates a specialization of base, binding the named parameters.
// Only parameters base takes at a call site can be bound; specializing a
// specialization further narrows the same exemplar.
func Specialize(base Callable, bindings map[string]cell.Value) (*Specialization, error) {
	underlying, inner := Resolve(base)
	uparams := underlying.Params()
	exemplar := make([]cell.Value, len(uparams))
	if inner != nil {
		copy(exemplar, inner.exemplar)
	} else {
		for i := range exemplar {
			exemplar[i] = cell.VoidValue
		}
	}

	surface := base.Params()
	for name, v := range bindings {
		if !hasParam(surface, name) {
			return nil, errs.NoSuchParam{Func: base.Name(), Name: name}
		}
		if !v.IsSet() {
			return nil, errs.BadValue{
				What: "specialized value of " + name, Valid: "a value", Actual: v.Repr()}
		}
		exemplar[indexOf(uparams, name)] = v
	}

	s := &Specialization{base: base, exemplar: exemplar}
	for i, p := range uparams {
		if exemplar[i].IsVoid() {
			s.params = append(s.params, p)
		}
	}
	s.res = resolution{underlying, s}
	return s, nil
}

func (s *Specialization) Name() string           { return s.base.Name() }
func (s *Specialization) Params() []Param        { return s.params }
func (s *Specialization) resolution() resolution { return s.res }

// Base returns the function that was specialized.
func (s *Specialization) Base() Callable { return s.base }

// Exemplar returns the exemplar: one cell per parameter of the underlying
// function, VOID where the parameter is not specialized. The slice must not be
// modified.
func (s *Specialization) Exemplar() []cell.Value { return s.exemplar }

// Adaptation runs a prelude on the frame of a function before running it.
type Adaptation struct {
	base    Callable
	prelude Body
}

// Adapt creates an adaptation of base.
func Adapt(base Callable, prelude Body) *Adaptation {
	return &Adaptation{base, prelude}
}

func (a *Adaptation) Name() string           { return a.base.Name() }
func (a *Adaptation) Params() []Param        { return a.base.Params() }
func (a *Adaptation) resolution() resolution { return a.base.resolution() }

// Base returns the adapted function.
func (a *Adaptation) Base() Callable { return a.base }

// Prelude returns the code run before the adapted function.
func (a *Adaptation) Prelude() Body { return a.prelude }

// Chain passes the result of each function to the next one. The arguments of a
// call go to the first function.
type Chain struct {
	funcs []Callable
}

// NewChain creates a chain of at least one function.
func NewChain(funcs ...Callable) (*Chain, error) {
	if len(funcs) == 0 {
		return nil, errs.ArityMismatch{What: "chained functions", ValidLow: 1, ValidHigh: -1, Actual: 0}
	}
	return &Chain{append([]Callable(nil), funcs...)}, nil
}

func (c *Chain) Name() string           { return c.funcs[0].Name() }
func (c *Chain) Params() []Param        { return c.funcs[0].Params() }
func (c *Chain) resolution() resolution { return c.funcs[0].resolution() }

// Funcs returns the chained functions. The slice must not be modified.
func (c *Chain) Funcs() []Callable { return c.funcs }

func hasParam(ps []Param, name string) bool { return indexOf(ps, name) >= 0 }

func indexOf(ps []Param, name string) int {
	for i, p := range ps {
		if p.Name == name {
			return i
		}
	}
	return -1
}
