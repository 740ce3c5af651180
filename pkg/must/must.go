// Package must has variants of common functions that panic instead of
// returning an error. It is meant for tests, where a failed setup step should
// stop the test right away.
package must

import (
	"io"
	"os"
	"path/filepath"
)

// OK panics with err if it is not nil.
func OK(err error) {
	if err != nil {
		panic(err)
	}
}

// OK1 returns v, or panics with err if it is not nil.
func OK1[T any](v T, err error) T {
	OK(err)
	return v
}

// Pipe is like os.Pipe.
func Pipe() (r, w *os.File) {
	r, w, err := os.Pipe()
	OK(err)
	return r, w
}

// Chdir is like os.Chdir.
func Chdir(dir string) { OK(os.Chdir(dir)) }

// ReadAllAndClose reads r until EOF and closes it.
func ReadAllAndClose(r io.ReadCloser) []byte {
	data := OK1(io.ReadAll(r))
	OK(r.Close())
	return data
}

// WriteFile writes data to a file, creating missing parent directories.
func WriteFile(name, data string) {
	OK(os.MkdirAll(filepath.Dir(name), 0700))
	OK(os.WriteFile(name, []byte(data), 0600))
}
