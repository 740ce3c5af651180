// Package errutil contains utilities for combining errors.
package errutil

import "strings"

// Multi combines the non-nil errors among errs. It returns nil if there are
// none, and the only one if there is one. Otherwise the result reports all of
// them in one message, and unwraps to them, so errors.Is and errors.As look at
// each part. Errors returned by Multi are flattened into the result:
//
//	Multi(Multi(err1, err2), err3) // same as Multi(err1, err2, err3)
func Multi(errs ...error) error {
	var parts multiError
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case multiError:
			parts = append(parts, err...)
		default:
			parts = append(parts, err)
		}
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	default:
		return parts
	}
}

type multiError []error

func (me multiError) Error() string {
	msgs := make([]string, len(me))
	for i, err := range me {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

func (me multiError) Unwrap() []error { return me }
