//go:build !unix

package sys

func pageSize() int { return DefaultPageSize }

func maxRSS() int64 { return 0 }
