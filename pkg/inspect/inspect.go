// Package inspect implements the inspector, a JSON-RPC server that runs
// workloads and reports the state of their frame stacks.
package inspect

import (
	"context"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/iarwain/r3/pkg/prog"
)

// Program is the inspector subprogram. It serves on stdin and stdout.
type Program struct {
	run    bool
	config *prog.Config
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "inspect", false, "run the inspector server on stdio")
	p.config = fs.Config()
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &server{p.config.Config}
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(transport{fds[0], fds[1]}, jsonrpc2.VSCodeObjectCodec{}),
		s.handler())
	<-conn.DisconnectNotify()
	return nil
}

type transport struct{ in, out *os.File }

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
