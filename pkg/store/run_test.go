package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/iarwain/r3/pkg/frame"
	. "github.com/iarwain/r3/pkg/store/storedefs"
)

var runs = []Run{
	{Workload: "fib", N: 10, Result: "55", Stats: frame.Stats{MaxDepth: 10, Opened: 177}},
	{Workload: "deep", N: 100, Result: "stack overflow", Failed: true},
	{Workload: "collect", N: 5, Result: "[1 2 3 4 5]"},
}

func TestRun(t *testing.T) {
	st := mustGetTempStore(t)

	startSeq, err := st.NextRunSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("NextRunSeq() -> (%v, %v), want (1, nil)", startSeq, err)
	}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, run := range runs {
		run.Time = now
		seq, err := st.AddRun(run)
		if seq != startSeq+i || err != nil {
			t.Errorf("AddRun(%v) -> (%v, %v), want (%v, nil)", run, seq, err, startSeq+i)
		}
	}

	for i, want := range runs {
		want.Seq = startSeq + i
		want.Time = now
		run, err := st.Run(want.Seq)
		if err != nil {
			t.Errorf("Run(%d) -> error %v", want.Seq, err)
		}
		if diff := cmp.Diff(want, run); diff != "" {
			t.Errorf("Run(%d) (-want +got):\n%s", want.Seq, diff)
		}
	}

	got, err := st.Runs(2, 4)
	if err != nil || len(got) != 2 || got[0].Workload != "deep" || got[1].Workload != "collect" {
		t.Errorf("Runs(2, 4) -> (%v, %v)", got, err)
	}

	if err := st.DelRun(2); err != nil {
		t.Errorf("DelRun(2) -> %v", err)
	}
	if _, err := st.Run(2); err != ErrNoMatchingRun {
		t.Errorf("Run(2) after DelRun -> %v, want ErrNoMatchingRun", err)
	}
	got, _ = st.Runs(0, 10)
	if len(got) != 2 {
		t.Errorf("Runs after DelRun -> %v", got)
	}
}
