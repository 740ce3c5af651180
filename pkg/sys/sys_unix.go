//go:build unix

package sys

import "golang.org/x/sys/unix"

func pageSize() int {
	if n := unix.Getpagesize(); n > 0 {
		return n
	}
	return DefaultPageSize
}

func maxRSS() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return int64(ru.Maxrss)
}
