package inspect

import (
	"context"
	"encoding/json"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/iarwain/r3/pkg/config"
	"github.com/iarwain/r3/pkg/frame"
	"github.com/iarwain/r3/pkg/logutil"
	"github.com/iarwain/r3/pkg/workload"
)

var logger = logutil.GetLogger("[inspect] ")

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	cfg config.Config
}

func (s *server) handler() jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"workloads": s.workloads,
		"run":       s.run,
		"config":    s.config,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// WorkloadInfo describes a workload.
type WorkloadInfo struct {
	Name     string `json:"name"`
	Doc      string `json:"doc"`
	DefaultN int    `json:"defaultN"`
}

// RunParams are the parameters of the run method.
type RunParams struct {
	Workload string `json:"workload"`
	// Size parameter; 0 means the default of the workload.
	N int `json:"n"`
	// If positive, the frames are recorded when a frame at this depth is
	// first activated.
	SnapshotDepth int `json:"snapshotDepth"`
}

// RunResult is the result of the run method.
type RunResult struct {
	Workload string       `json:"workload"`
	N        int          `json:"n"`
	Result   string       `json:"result"`
	Error    string       `json:"error,omitempty"`
	Stats    frame.Stats  `json:"stats"`
	Snapshot []frame.Info `json:"snapshot,omitempty"`
}

// Handler implementations. These are all called synchronously.

func (s *server) workloads(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	names := workload.Names()
	infos := make([]WorkloadInfo, len(names))
	for i, name := range names {
		w, _ := workload.Lookup(name)
		infos[i] = WorkloadInfo{w.Name, w.Doc, w.DefaultN}
	}
	return infos, nil
}

func (s *server) run(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params RunParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	w, ok := workload.Lookup(params.Workload)
	if !ok || params.N < 0 {
		return nil, errInvalidParams
	}
	n := params.N
	if n == 0 {
		n = w.DefaultN
	}
	logger.Printf("running %s with n = %d", w.Name, n)

	var snapshot []frame.Info
	setup := func(st *frame.Stack) {
		if params.SnapshotDepth <= 0 {
			return
		}
		st.OnActivate = func(f *frame.Frame) {
			if snapshot == nil && f.Depth() >= params.SnapshotDepth {
				snapshot = st.Frames()
			}
		}
	}
	res := workload.Execute(s.cfg, w, n, setup)

	result := RunResult{Workload: w.Name, N: n, Result: res.Value.Repr(),
		Stats: res.Stats, Snapshot: snapshot}
	if res.Err != nil {
		result.Error = res.Err.Error()
	}
	return result, nil
}

func (s *server) config(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return s.cfg, nil
}
