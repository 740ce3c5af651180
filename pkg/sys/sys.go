// Package sys provides system utilities with the same API across OSes.
package sys

import (
	"github.com/mattn/go-isatty"
)

// DefaultPageSize is used when the OS does not report a page size.
const DefaultPageSize = 4096

// IsATTY determines whether the given file is a terminal.
func IsATTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PageSize returns the memory page size of the OS in bytes.
func PageSize() int { return pageSize() }

// MaxRSS returns the maximum resident set size of the current process as
// reported by getrusage (kilobytes on Linux, bytes on macOS), or 0 if it is not
// known.
func MaxRSS() int64 { return maxRSS() }
