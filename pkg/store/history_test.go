package store_test

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/iarwain/r3/pkg/prog/progtest"
	. "github.com/iarwain/r3/pkg/store"
	"github.com/iarwain/r3/pkg/store/storedefs"
	"github.com/iarwain/r3/pkg/testutil"
)

var (
	Test        = progtest.Test
	ThatR3stack = progtest.ThatR3stack
)

func TestHistoryProgram(t *testing.T) {
	dir := testutil.TempDir(t)
	db := filepath.Join(dir, "db")
	st, err := NewStore(db)
	if err != nil {
		t.Fatal(err)
	}
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	st.AddRun(storedefs.Run{Time: when, Workload: "fib", N: 10, Result: "55"})
	st.AddRun(storedefs.Run{Time: when, Workload: "deep", N: 9, Result: "boom", Failed: true})
	st.Close()

	Test(t, &HistoryProgram{},
		ThatR3stack().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
		ThatR3stack("-history").ExitsWith(2).WritesStderrContaining("-history requires -db"),
		ThatR3stack("-history", "-db", db, "foo").
			ExitsWith(2).WritesStderrContaining("arguments are not allowed with -history"),
		ThatR3stack("-history", "-db", db).WritesStdout(
			"1 2024-01-02 03:04:05 fib n=10 max-depth=0 pages=0 => 55\n"+
				"2 2024-01-02 03:04:05 deep n=9 max-depth=0 pages=0 failed: boom\n"),
		ThatR3stack("-history", "-db", db, "-delete", "1").DoesNothing(),
		ThatR3stack("-history", "-db", db, "-delete", "1").
			ExitsWith(2).WritesStderr("no matching run\n"),
	)

	exit, stdout, _ := progtest.Run(&HistoryProgram{}, []string{"-history", "-json", "-db", db}, "")
	var runs []storedefs.Run
	if err := json.Unmarshal([]byte(stdout), &runs); exit != 0 || err != nil {
		t.Fatalf("-json output %q: exit %d, %v", stdout, exit, err)
	}
	if len(runs) != 1 || runs[0].Seq != 2 || runs[0].Workload != "deep" {
		t.Errorf("-json output after delete: %+v", runs)
	}
}
