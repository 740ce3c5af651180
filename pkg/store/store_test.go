package store

import (
	"path/filepath"
	"testing"

	"github.com/iarwain/r3/pkg/testutil"
)

func mustGetTempStore(t *testing.T) DBStore {
	dir := testutil.TempDir(t)
	st, err := NewStore(filepath.Join(dir, "db"))
	if err != nil {
		t.Fatalf("NewStore -> %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestNewStore_BadPath(t *testing.T) {
	dir := testutil.TempDir(t)
	if _, err := NewStore(filepath.Join(dir, "no", "such", "db")); err == nil {
		t.Errorf("NewStore in missing directory -> nil error")
	}
}

func TestClose_NilStore(t *testing.T) {
	var s *dbStore
	if err := s.Close(); err != nil {
		t.Errorf("Close of nil store -> %v", err)
	}
}
