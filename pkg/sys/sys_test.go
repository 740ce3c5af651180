package sys

import (
	"os"
	"testing"
)

func TestPageSize(t *testing.T) {
	n := PageSize()
	if n <= 0 || n&(n-1) != 0 {
		t.Errorf("PageSize() -> %d, want positive power of 2", n)
	}
}

func TestMaxRSS(t *testing.T) {
	if rss := MaxRSS(); rss < 0 {
		t.Errorf("MaxRSS() -> %d, want >= 0", rss)
	}
}

func TestIsATTY_File(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsATTY(f.Fd()) {
		t.Errorf("IsATTY(regular file) -> true, want false")
	}
}
