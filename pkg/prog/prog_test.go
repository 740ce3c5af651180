package prog_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/iarwain/r3/pkg/fn"
	"github.com/iarwain/r3/pkg/must"
	. "github.com/iarwain/r3/pkg/prog"
	"github.com/iarwain/r3/pkg/prog/progtest"
	"github.com/iarwain/r3/pkg/testutil"
)

var (
	Test        = progtest.Test
	ThatR3stack = progtest.ThatR3stack
)

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)

	Test(t, &testProgram{},
		ThatR3stack("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatR3stack("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatR3stack("-help").
			WritesStdoutContaining("Usage: r3stack [flags] [workload]"),

		ThatR3stack("-cpuprofile", "cpuprof").DoesNothing(),
		ThatR3stack("-cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),
	)

	// Check for the effect of -cpuprofile. There isn't much to test beyond a
	// sanity check that the profile file now exists.
	_, err := os.Stat("cpuprof")
	if err != nil {
		t.Errorf("CPU profile file does not exist: %v", err)
	}
}

func TestSharedFlags(t *testing.T) {
	dir := testutil.InTempDir(t)
	must.WriteFile("r3.yaml", "stack-limit: 42\n")
	must.WriteFile("bad.yaml", "stack-limit: -1\n")
	testutil.Set(t, &fn.Debug, false)

	Test(t, &testProgram{sharedFlags: true},
		ThatR3stack().WritesStdout("json=false db= stack-limit=400000"),
		ThatR3stack("-json", "-db", "x.db", "-config", "r3.yaml").
			WritesStdout("json=true db=x.db stack-limit=42"),
		ThatR3stack("-config", "bad.yaml").
			ExitsWith(2).
			WritesStderrContaining("stack-limit must be 1 or more"),
		ThatR3stack("-config", filepath.Join(dir, "missing.yaml")).
			ExitsWith(2).
			WritesStderrContaining("missing.yaml"),
	)
}

func TestSharedFlags_RegisteredOnce(t *testing.T) {
	Test(t, Composite(&testProgram{sharedFlags: true}, &testProgram{sharedFlags: true}),
		ThatR3stack("-json").WritesStdout("json=true db= stack-limit=400000"),
	)
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, &testProgram{nextProgram: true},
		ThatR3stack().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(&testProgram{nextProgram: true}, &testProgram{writeOut: "program 2"}),
		ThatR3stack().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(&testProgram{nextProgram: true}, &testProgram{nextProgram: true}),
		ThatR3stack().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			&testProgram{writeOut: "program 1"}, &testProgram{writeOut: "program 2"}),
		ThatR3stack().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		&testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatR3stack().ExitsWith(2).WritesStderrContaining("lorem ipsum\nUsage:"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, &testProgram{returnErr: Exit(3)},
		ThatR3stack().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, &testProgram{returnErr: Exit(0)},
		ThatR3stack().ExitsWith(0),
	)
}

type testProgram struct {
	nextProgram bool
	sharedFlags bool
	writeOut    string
	returnErr   error

	json   *bool
	db     *string
	config *Config
}

func (p *testProgram) RegisterFlags(fs *FlagSet) {
	if p.sharedFlags {
		p.json = fs.JSON()
		p.db = fs.DB()
		p.config = fs.Config()
	}
}

func (p *testProgram) Run(fds [3]*os.File, args []string) error {
	if p.nextProgram {
		return ErrNextProgram
	}
	if p.sharedFlags {
		fmt.Fprintf(fds[1], "json=%v db=%s stack-limit=%d",
			*p.json, *p.db, p.config.Config.StackLimit)
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}
