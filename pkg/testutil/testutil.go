// Package testutil contains helpers shared by the tests of r3 packages.
package testutil

// Cleanuper is the part of testing.TB that the helpers need. Tests use a fake
// to run cleanups early.
type Cleanuper interface {
	Cleanup(func())
}

// Set sets *p to v, and restores the old value in cleanup.
func Set[T any](c Cleanuper, p *T, v T) {
	old := *p
	*p = v
	c.Cleanup(func() { *p = old })
}
