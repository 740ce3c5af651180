package workload

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iarwain/r3/pkg/prog"
	"github.com/iarwain/r3/pkg/store"
	"github.com/iarwain/r3/pkg/store/storedefs"
	"github.com/iarwain/r3/pkg/sys"
)

// Program runs a workload and shows its outcome and the statistics of the
// frame stack.
type Program struct {
	n      int
	list   bool
	db     *string
	json   *bool
	config *prog.Config
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.IntVar(&p.n, "n", 0, "size parameter of the workload; 0 means the workload's default")
	fs.BoolVar(&p.list, "list", false, "list the workloads and quit")
	p.db = fs.DB()
	p.json = fs.JSON()
	p.config = fs.Config()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if p.list {
		for _, name := range Names() {
			w, _ := Lookup(name)
			fmt.Fprintf(fds[1], "%-8s %s (default n: %d)\n", name, w.Doc, w.DefaultN)
		}
		return nil
	}
	if len(args) != 1 {
		return prog.BadUsage("need exactly one workload")
	}
	w, ok := Lookup(args[0])
	if !ok {
		return prog.BadUsage("no such workload: " + args[0])
	}
	n := p.n
	if n <= 0 {
		n = w.DefaultN
	}

	res := Execute(p.config.Config, w, n, nil)
	run := storedefs.Run{
		Time: time.Now(), Workload: w.Name, N: n,
		Result: res.Value.Repr(), Stats: res.Stats, MaxRSS: sys.MaxRSS()}
	if res.Err != nil {
		run.Result = res.Err.Error()
		run.Failed = true
	}

	if *p.db != "" {
		if err := record(*p.db, &run); err != nil {
			return err
		}
	}
	if *p.json {
		err := json.NewEncoder(fds[1]).Encode(run)
		if err != nil {
			return err
		}
	} else {
		writeRun(fds[1], run, sys.IsATTY(fds[1].Fd()))
	}
	if run.Failed {
		return prog.Exit(1)
	}
	return nil
}

func record(db string, run *storedefs.Run) error {
	st, err := store.NewStore(db)
	if err != nil {
		return err
	}
	defer st.Close()
	run.Seq, err = st.AddRun(*run)
	return err
}

const (
	sgrBold  = "\033[1m"
	sgrRed   = "\033[31m"
	sgrGreen = "\033[32m"
	sgrReset = "\033[m"
)

func writeRun(w io.Writer, run storedefs.Run, color bool) {
	style := func(sgr, s string) string {
		if color {
			return sgr + s + sgrReset
		}
		return s
	}
	outcome := style(sgrGreen, "=> "+run.Result)
	if run.Failed {
		outcome = style(sgrRed, "failed: "+run.Result)
	}
	st := run.Stats
	fmt.Fprintf(w, "%s n=%d %s\n", style(sgrBold, run.Workload), run.N, outcome)
	fmt.Fprintf(w, "frames: opened %d, max depth %d, unwound %d\n",
		st.Opened, st.MaxDepth, st.Unwound)
	fmt.Fprintf(w, "chunks: pages allocated %d, freed %d, max depth %d\n",
		st.Chunks.PagesAllocated, st.Chunks.PagesFreed, st.Chunks.MaxDepth)
	fmt.Fprintf(w, "data: max length %d, expansions %d\n", st.DataMaxLen, st.DataExpansions)
	fmt.Fprintf(w, "heap: recycles %d, swept %d\n", st.Heap.Recycles, st.Heap.Swept)
	if run.Seq != 0 {
		fmt.Fprintf(w, "recorded as run %d\n", run.Seq)
	}
}
