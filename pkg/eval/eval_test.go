package eval_test

import (
	"errors"
	"testing"

	"github.com/iarwain/r3/pkg/cell"
	"github.com/iarwain/r3/pkg/config"
	"github.com/iarwain/r3/pkg/errs"
	. "github.com/iarwain/r3/pkg/eval"
	"github.com/iarwain/r3/pkg/fn"
	"github.com/iarwain/r3/pkg/frame"
	"github.com/iarwain/r3/pkg/gc"
	. "github.com/iarwain/r3/pkg/tt"
)

func intArg(ctx fn.Context, n int) int {
	i, _ := ctx.Arg(n).Int()
	return i
}

var (
	add = fn.NewNative("add", fn.Params("a", "b"), func(ctx fn.Context) (cell.Value, error) {
		return cell.FromInt(intArg(ctx, 1) + intArg(ctx, 2)), nil
	})
	double = fn.NewNative("double", fn.Params("x"), func(ctx fn.Context) (cell.Value, error) {
		return cell.FromInt(2 * intArg(ctx, 1)), nil
	})
	// Returns its refinement, or the word "none" if it is absent.
	refined = fn.NewNative("refined", fn.Params("x", "/y"), func(ctx fn.Context) (cell.Value, error) {
		if ctx.Arg(2).IsVoid() {
			return cell.FromWord("none"), nil
		}
		return ctx.Arg(2), nil
	})
	errFail = errors.New("fail")
	fail    = fn.NewNative("fail", nil, func(ctx fn.Context) (cell.Value, error) {
		ctx.Data().Push(cell.FromInt(1))
		return cell.VoidValue, errFail
	})
	// Returns its own arguments, which outlive the call.
	capture = fn.NewDurable("capture", fn.Params("x"), func(ctx fn.Context) (cell.Value, error) {
		return cell.FromBlock(ctx.Varlist()), nil
	})
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func newStack() *frame.Stack {
	cfg := config.Default()
	cfg.PageSlots = 32
	cfg.StackLimit = 100
	return frame.New(cfg)
}

func TestApply(t *testing.T) {
	addTen := must(fn.Specialize(add, map[string]cell.Value{"a": cell.FromInt(10)}))
	addOne := must(fn.Specialize(add, map[string]cell.Value{"b": cell.FromInt(1)}))
	doubleArg := fn.Adapt(double, func(ctx fn.Context) (cell.Value, error) {
		ctx.SetArg(1, cell.FromInt(2*intArg(ctx, 1)))
		return cell.VoidValue, nil
	})
	incThenDouble := must(fn.NewChain(addOne, double))

	s := newStack()
	apply := func(c fn.Callable, args ...cell.Value) (cell.Value, error) {
		return Apply(s, c, args...)
	}
	Test(t, Fn("Apply", apply), Table{
		Args(add, cell.FromInt(1), cell.FromInt(2)).Rets(cell.FromInt(3), nil),
		Args(addTen, cell.FromInt(5)).Rets(cell.FromInt(15), nil),
		Args(doubleArg, cell.FromInt(3)).Rets(cell.FromInt(12), nil),
		Args(incThenDouble, cell.FromInt(3)).Rets(cell.FromInt(8), nil),
		Args(refined, cell.FromInt(1)).Rets(cell.FromWord("none"), nil),
		Args(refined, cell.FromInt(1), cell.FromInt(2)).Rets(cell.FromInt(2), nil),

		Args(add, cell.FromInt(1)).Rets(cell.VoidValue, errs.ArityMismatch{
			What: "arguments of add", ValidLow: 2, ValidHigh: 2, Actual: 1}),
		Args(addTen, cell.FromInt(1), cell.FromInt(2)).Rets(cell.VoidValue, errs.ArityMismatch{
			What: "arguments of add", ValidLow: 1, ValidHigh: 1, Actual: 2}),
		Args(double, cell.EndValue).Rets(cell.VoidValue, errs.BadValue{
			What: "argument value", Valid: "a value", Actual: "<end>"}),
	})
	if s.Depth() != 0 || s.Chunks().Depth() != 0 {
		t.Errorf("Apply left %d frames and %d chunks", s.Depth(), s.Chunks().Depth())
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("Shutdown -> %v", err)
	}
}

func TestApply_BindErrorUnwindsFrame(t *testing.T) {
	s := newStack()
	var opened *frame.Frame
	s.OnActivate = func(f *frame.Frame) { opened = f }

	_, err := Apply(s, add, cell.FromInt(1))
	if _, ok := err.(errs.ArityMismatch); !ok {
		t.Fatalf("Apply -> %v, want ArityMismatch", err)
	}
	if opened != nil {
		t.Errorf("frame with unbound arguments was activated")
	}
	if st := s.Stats(); st.Depth != 0 || st.Opened != 1 || st.Unwound != 1 {
		t.Errorf("stats after bind error: %+v", st)
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("Shutdown -> %v", err)
	}
}

func TestApply_Recursion(t *testing.T) {
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

	s := newStack()
	v, err := Run(s, fib, cell.FromInt(15))
	if v != cell.FromInt(610) || err != nil {
		t.Errorf("fib 15 -> %v, %v; want 610, nil", v, err)
	}
	if st := s.Stats(); st.MaxDepth != 15 || st.Depth != 0 {
		t.Errorf("stats after fib: %+v", st)
	}
}

func TestRun_UnwindsOnError(t *testing.T) {
	s := newStack()
	caller := fn.NewNative("caller", nil, func(ctx fn.Context) (cell.Value, error) {
		return ctx.Apply(fail)
	})
	_, err := Run(s, caller)
	if err != errFail {
		t.Errorf("Run -> %v, want %v", err, errFail)
	}
	if s.Depth() != 0 || s.Data().Len() != 0 || s.Chunks().Depth() != 0 {
		t.Errorf("Run did not unwind")
	}
	if st := s.Stats(); st.Unwound != 2 {
		t.Errorf("%d frames unwound, want 2", st.Unwound)
	}

	// An error from Apply without a trap leaves the frames open.
	_, err = Apply(s, caller)
	if err != errFail || s.Depth() != 2 {
		t.Errorf("Apply -> %v with %d frames", err, s.Depth())
	}
}

func TestRun_StackOverflow(t *testing.T) {
	s := newStack()
	deep := fn.NewNative("deep", fn.Params("n"), nil)
	deep.SetBody(func(ctx fn.Context) (cell.Value, error) {
		if err := ctx.Data().Push(ctx.Arg(1)); err != nil {
			return cell.VoidValue, err
		}
		return ctx.Apply(deep, cell.FromInt(intArg(ctx, 1)+1))
	})
	_, err := Run(s, deep, cell.FromInt(0))
	if err != (errs.StackOverflow{Limit: 100}) {
		t.Errorf("Run -> %v, want StackOverflow", err)
	}
	if s.Depth() != 0 || s.Data().Len() != 0 {
		t.Errorf("overflow left %d frames and %d values", s.Depth(), s.Data().Len())
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("Shutdown -> %v", err)
	}
}

func TestApply_DurableArgumentsOutliveCall(t *testing.T) {
	s := newStack()
	v, err := Run(s, capture, cell.FromString("kept"))
	if err != nil {
		t.Fatal(err)
	}
	varlist, ok := v.Payload().(*gc.Array)
	if !ok {
		t.Fatalf("capture returned %v", v)
	}
	s.Data().Push(v)
	s.Recycle()
	if !varlist.IsAccessible() || varlist.At(0) != cell.FromString("kept") {
		t.Errorf("captured varlist was reclaimed")
	}
	s.Data().PopTo(0)
	s.Recycle()
	if varlist.IsAccessible() {
		t.Errorf("unreachable varlist was not reclaimed")
	}
}

func TestCall_GathersIntoNormalFrame(t *testing.T) {
	s := newStack()
	var modes []frame.Mode
	s.OnActivate = func(f *frame.Frame) { modes = append(modes, f.Mode()) }

	v, err := Call(s, refined, cell.FromInt(1))
	if v != cell.FromWord("none") || err != nil {
		t.Errorf("Call -> %v, %v", v, err)
	}
	if _, err := Call(s, add); err == nil {
		t.Errorf("Call with missing arguments -> nil error")
	}
	Apply(s, double, cell.FromInt(1))
	if len(modes) != 2 || modes[0] != frame.Normal || modes[1] != frame.Applying {
		t.Errorf("frames activated in modes %v", modes)
	}
}
