package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iarwain/r3/pkg/prog"
	"github.com/iarwain/r3/pkg/store/storedefs"
)

// HistoryProgram lists or deletes the runs recorded in the run history.
type HistoryProgram struct {
	history bool
	del     int
	db      *string
	json    *bool
}

func (p *HistoryProgram) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.history, "history", false, "show the run history and quit")
	fs.IntVar(&p.del, "delete", 0, "with -history, delete the run with this sequence number")
	p.db = fs.DB()
	p.json = fs.JSON()
}

func (p *HistoryProgram) Run(fds [3]*os.File, args []string) error {
	if !p.history {
		return prog.ErrNextProgram
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -history")
	}
	if *p.db == "" {
		return prog.BadUsage("-history requires -db")
	}
	st, err := NewStore(*p.db)
	if err != nil {
		return err
	}
	defer st.Close()

	if p.del != 0 {
		if _, err := st.Run(p.del); err != nil {
			return err
		}
		return st.DelRun(p.del)
	}

	upto, err := st.NextRunSeq()
	if err != nil {
		return err
	}
	runs, err := st.Runs(0, upto)
	if err != nil {
		return err
	}
	if *p.json {
		if runs == nil {
			runs = []storedefs.Run{}
		}
		return json.NewEncoder(fds[1]).Encode(runs)
	}
	for _, run := range runs {
		fmt.Fprintln(fds[1], formatRun(run))
	}
	return nil
}

func formatRun(run storedefs.Run) string {
	outcome := "=> " + run.Result
	if run.Failed {
		outcome = "failed: " + run.Result
	}
	return fmt.Sprintf("%d %s %s n=%d max-depth=%d pages=%d %s",
		run.Seq, run.Time.Format("2006-01-02 15:04:05"), run.Workload, run.N,
		run.Stats.MaxDepth, run.Stats.Chunks.PagesAllocated, outcome)
}
