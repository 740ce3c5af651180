// R3stack runs workloads on the frame stack and reports how the stack behaved.
// It can also list the runs recorded in a database, and serve an inspector
// over JSON-RPC.
package main

import (
	"os"

	"github.com/iarwain/r3/pkg/inspect"
	"github.com/iarwain/r3/pkg/prog"
	"github.com/iarwain/r3/pkg/store"
	"github.com/iarwain/r3/pkg/workload"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			&store.HistoryProgram{}, &inspect.Program{}, &workload.Program{})))
}
