// Package workload implements workloads that exercise a frame stack, and the
// subprogram that runs them.
package workload

import (
	"errors"
	"fmt"
	"sort"

	"github.com/xiaq/persistent/vector"

	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/config"
	"github.com/iarwain/r3/pkg/errs"
	"github.com/iarwain/r3/pkg/eval"
	"github.com/iarwain/r3/pkg/fn"
	"github.com/iarwain/r3/pkg/frame"
	"github.com/iarwain/r3/pkg/gc"
)

// Workload is a named program run on a fresh frame stack. N is its size
// parameter.
type Workload struct {
	Name     string
	Doc      string
	DefaultN int
	Run      func(s *frame.Stack, n int) (cell.Value, error)
}

var workloads = map[string]Workload{}

func init() {
	for _, w := range []Workload{
		{
			Name:     "fib",
			Doc:      "naive recursive Fibonacci number of n",
			DefaultN: 20,
			Run:      runFib,
		},
		{
			Name:     "deep",
			Doc:      "recurse n levels, keeping the argument of every level on the data stack",
			DefaultN: 1000,
			Run:      runDeep,
		},
		{
			Name:     "unwind",
			Doc:      "recurse n levels and fail at the bottom, unwinding to a trap",
			DefaultN: 100,
			Run:      runUnwind,
		},
		{
			Name:     "compose",
			Doc:      "call a chain of an adaptation and a specialization n times",
			DefaultN: 100,
			Run:      runCompose,
		},
		{
			Name:     "collect",
			Doc:      "push 1 to n on the data stack and collect them",
			DefaultN: 1000,
			Run:      runCollect,
		},
		{
			Name:     "closure",
			Doc:      "create n closures, keep them and let the collector reclaim them",
			DefaultN: 100,
			Run:      runClosure,
		},
	} {
		workloads[w.Name] = w
	}
}

// Lookup finds a workload by name.
func Lookup(name string) (Workload, bool) {
	w, ok := workloads[name]
	return w, ok
}

// Names returns the names of all the workloads, sorted.
func Names() []string {
	names := make([]string, 0, len(workloads))
	for name := range workloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result is the outcome of executing a workload.
type Result struct {
	Value cell.Value
	Err   error
	Stats frame.Stats
}

// Execute runs a workload on a new frame stack built from cfg, within a trap.
// If setup is not nil, it is called with the stack before the workload runs.
// The stack is collected and shut down afterwards; the statistics are taken
// before the shutdown.
func Execute(cfg config.Config, w Workload, n int, setup func(*frame.Stack)) Result {
	s := frame.New(cfg)
	if setup != nil {
		setup(s)
	}
	v := cell.VoidValue
	err := s.Trap(func() error {
		var err error
		v, err = w.Run(s, n)
		return err
	})
	s.Recycle()
	stats := s.Stats()
	if shutdownErr := s.Shutdown(); err == nil {
		err = shutdownErr
	}
	return Result{v, err, stats}
}

func intArg(ctx fn.Context, n int) int {
	i, _ := ctx.Arg(n).Int()
	return i
}

func runFib(s *frame.Stack, n int) (cell.Value, error) {
	fib := fn.NewNative("fib", fn.Params("n"), nil)
	fib.SetBody(func(ctx fn.Context) (cell.Value, error) {
		n := intArg(ctx, 1)
		if n < 2 {
			return cell.FromInt(n), nil
		}
		a, err := ctx.Apply(fib, cell.FromInt(n-1))
		if err != nil {
			return a, err
		}
		b, err := ctx.Apply(fib, cell.FromInt(n-2))
		if err != nil {
			return b, err
		}
		ai, _ := a.Int()
		bi, _ := b.Int()
		return cell.FromInt(ai + bi), nil
	})
	return eval.Call(s, fib, cell.FromInt(n))
}

// Returns a function that takes a level, pushes it onto the data stack and
// calls itself with the next level until level n, where it calls bottom. It
// returns what bottom returns.
func descend(n int, bottom fn.Body) *fn.Native {
	f := fn.NewNative("descend", fn.Params("level"), nil)
	f.SetBody(func(ctx fn.Context) (cell.Value, error) {
		level := intArg(ctx, 1)
		data := ctx.Data()
		mark := data.Len()
		if err := data.Push(ctx.Arg(1)); err != nil {
			return cell.VoidValue, err
		}
		var v cell.Value
		var err error
		if level < n {
			v, err = ctx.Apply(f, cell.FromInt(level+1))
		} else {
			v, err = bottom(ctx)
		}
		if err != nil {
			return v, err
		}
		data.PopTo(mark)
		return v, nil
	})
	return f
}

func runDeep(s *frame.Stack, n int) (cell.Value, error) {
	bottom := func(ctx fn.Context) (cell.Value, error) {
		return cell.FromInt(ctx.Data().Len()), nil
	}
	return eval.Call(s, descend(n, bottom), cell.FromInt(1))
}

var errBottom = errors.New("reached the bottom")

func runUnwind(s *frame.Stack, n int) (cell.Value, error) {
	var guarded cell.Value
	bottom := func(ctx fn.Context) (cell.Value, error) {
		ctx.Guards().GuardValue(&guarded)
		return cell.VoidValue, errBottom
	}
	before := s.Stats().Unwound
	err := s.Trap(func() error {
		_, err := eval.Apply(s, descend(n, bottom), cell.FromInt(1))
		return err
	})
	if err != errBottom {
		return cell.VoidValue, err
	}
	if err := s.Guards().AssertEmpty(); err != nil {
		return cell.VoidValue, err
	}
	return cell.FromInt(s.Stats().Unwound - before), nil
}

func runCompose(s *frame.Stack, n int) (cell.Value, error) {
	add := fn.NewNative("add", fn.Params("a", "b"), func(ctx fn.Context) (cell.Value, error) {
		return cell.FromInt(intArg(ctx, 1) + intArg(ctx, 2)), nil
	})
	inc, err := fn.Specialize(add, map[string]cell.Value{"b": cell.FromInt(1)})
	if err != nil {
		return cell.VoidValue, err
	}
	doubleThenInc := fn.Adapt(inc, func(ctx fn.Context) (cell.Value, error) {
		ctx.SetArg(1, cell.FromInt(2*intArg(ctx, 1)))
		return cell.VoidValue, nil
	})
	pipeline, err := fn.NewChain(doubleThenInc, inc)
	if err != nil {
		return cell.VoidValue, err
	}

	sum := 0
	for i := 1; i <= n; i++ {
		v, err := eval.Apply(s, pipeline, cell.FromInt(i))
		if err != nil {
			return v, err
		}
		x, _ := v.Int()
		sum += x
	}
	return cell.FromInt(sum), nil
}

func runCollect(s *frame.Stack, n int) (cell.Value, error) {
	data := s.Data()
	push := func() error {
		for i := 1; i <= n; i++ {
			if err := data.Push(cell.FromInt(i)); err != nil {
				return err
			}
		}
		return nil
	}

	start := data.Len()
	if err := push(); err != nil {
		return cell.VoidValue, err
	}
	sum := sumVector(data.Collect(start))

	arr := gc.NewArray(0)
	s.Heap().Manage(arr)
	s.Guards().GuardArray(arr)
	defer s.Guards().UnguardArray(arr)
	if err := push(); err != nil {
		return cell.VoidValue, err
	}
	if _, err := data.CollectInto(start, arr, 0); err != nil {
		return cell.VoidValue, err
	}
	if arr.Len() != n {
		return cell.VoidValue, errs.ArityMismatch{
			What: "collected values", ValidLow: n, ValidHigh: n, Actual: arr.Len()}
	}
	return cell.FromInt(sum), nil
}

func sumVector(v vector.Vector) int {
	sum := 0
	for it := v.Iterator(); it.HasElem(); it.Next() {
		i, _ := it.Elem().(cell.Value).Int()
		sum += i
	}
	return sum
}

func runClosure(s *frame.Stack, n int) (cell.Value, error) {
	capture := fn.NewDurable("capture", fn.Params("x"), func(ctx fn.Context) (cell.Value, error) {
		return cell.FromBlock(ctx.Varlist()), nil
	})

	keep := gc.NewArray(0)
	s.Heap().Manage(keep)
	if err := keepClosures(s, keep, capture, n); err != nil {
		return cell.VoidValue, err
	}
	return cell.FromInt(s.Recycle()), nil
}

// Calls capture n times and appends the results to keep, which stays guarded
// while the collector runs.
func keepClosures(s *frame.Stack, keep *gc.Array, capture fn.Callable, n int) error {
	s.Guards().GuardArray(keep)
	defer s.Guards().UnguardArray(keep)
	for i := 0; i < n; i++ {
		v, err := eval.Apply(s, capture, cell.FromInt(i))
		if err != nil {
			return err
		}
		if _, err := keep.Insert(keep.Len(), []cell.Value{v}); err != nil {
			return err
		}
		if i%16 == 15 {
			s.Recycle()
		}
	}
	if swept := s.Recycle(); swept != 0 {
		return fmt.Errorf("%d kept closures reclaimed", swept)
	}
	return nil
}
