package fn

import "github.com/iarwain/r3/pkg/errs"

// Resolve returns the underlying function of c, which is a *Native or a
// *Durable, and the specialization whose exemplar pre-fills its frame, if any.
// Resolving the underlying function again yields the same function and no
// specialization.
func Resolve(c Callable) (underlying Callable, specializer *Specialization) {
	res := c.resolution()
	if Debug {
		u, s := derive(c)
		if u != res.underlying || s != res.specializer {
			errs.Faultf("resolve", "cached resolution of %s is stale", c.Name())
		}
		if u2, s2 := derive(u); u2 != u || s2 != nil {
			errs.Faultf("resolve", "underlying function of %s is composed", c.Name())
		}
	}
	return res.underlying, res.specializer
}

// Arity returns the number of argument slots of a frame for c.
func Arity(c Callable) int {
	u, _ := Resolve(c)
	return len(u.Params())
}

// IsDurable reports whether frames for c keep their arguments in a managed
// array.
func IsDurable(c Callable) bool {
	u, _ := Resolve(c)
	_, ok := u.(*Durable)
	return ok
}

// Derives the resolution by walking the composition.
func derive(c Callable) (Callable, *Specialization) {
	switch c := c.(type) {
	case *Native, *Durable:
		return c, nil
	case *Specialization:
		u, _ := derive(c.base)
		return u, c
	case *Adaptation:
		return derive(c.base)
	case *Chain:
		return derive(c.funcs[0])
	default:
		errs.Faultf("resolve", "unknown callable %T", c)
		return nil, nil
	}
}
