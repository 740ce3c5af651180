package testutil

import (
	"os"
	"path/filepath"

	"github.com/iarwain/r3/pkg/must"
)

// TempDir creates a directory removed in cleanup. Unlike testing.TB.TempDir,
// the returned path has its symlinks resolved, so it can be compared with the
// result of os.Getwd.
func TempDir(c Cleanuper) string {
	dir := must.OK1(filepath.EvalSymlinks(must.OK1(os.MkdirTemp("", "r3test"))))
	c.Cleanup(func() { must.OK(os.RemoveAll(dir)) })
	return dir
}

// InTempDir creates a directory with TempDir and changes into it.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	Chdir(c, dir)
	return dir
}

// Chdir changes into dir, and changes back in cleanup.
func Chdir(c Cleanuper, dir string) string {
	oldWd := must.OK1(os.Getwd())
	must.Chdir(dir)
	c.Cleanup(func() { must.Chdir(oldWd) })
	return dir
}
