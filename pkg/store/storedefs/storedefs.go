// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// do not need to depend on the concrete implementation.
package storedefs

import (
	"errors"
	"time"

	"github.com/iarwain/r3/pkg/frame"
)

// ErrNoMatchingRun is the error returned when a query completes with no
// result.
var ErrNoMatchingRun = errors.New("no matching run")

// Store is an interface satisfied by the storage service.
type Store interface {
	NextRunSeq() (int, error)
	AddRun(run Run) (int, error)
	DelRun(seq int) error
	Run(seq int) (Run, error)
	Runs(from, upto int) ([]Run, error)
}

// Run is an entry in the run history: the outcome of running a workload once.
type Run struct {
	Seq      int       `json:"seq"`
	Time     time.Time `json:"time"`
	Workload string    `json:"workload"`
	N        int       `json:"n"`
	// The result value, or the error message if Failed is true.
	Result string      `json:"result"`
	Failed bool        `json:"failed"`
	Stats  frame.Stats `json:"stats"`
	// Peak resident set size of the process; 0 if unknown.
	MaxRSS int64 `json:"maxRSS"`
}
