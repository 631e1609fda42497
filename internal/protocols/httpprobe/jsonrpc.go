/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package httpprobe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/framing"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const jsonrpcResponseCap = 512 * 1024

// RPCCall is one caller-supplied method invocation. It carries no ID:
// Call always sends id 1, and Batch assigns its own sequential 1..N
// IDs.
type RPCCall struct {
	Method string
	Params interface{}
}

// JSONRPCParams is the `/api/jsonrpc/call` request.
type JSONRPCParams struct {
	Target transport.Target
	Path   string // defaults to "/"
	Call   RPCCall
}

func (p JSONRPCParams) path() string {
	if p.Path == "" {
		return "/"
	}
	return p.Path
}

// RPCResult is one decoded JSON-RPC response object.
type RPCResult struct {
	ID     int
	Result json.RawMessage
	Error  json.RawMessage
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Call sends one JSON-RPC 2.0 request and decodes the single response.
func Call(ctx context.Context, p JSONRPCParams) (*RPCResult, error) {
	if p.Call.Method == "" {
		return nil, ecode.New(ecode.Validation, "jsonrpc: method is required")
	}
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*RPCResult, error) {
		body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: p.Call.Method, Params: p.Call.Params})
		if err != nil {
			return nil, ecode.Wrap(ecode.Internal, err)
		}
		resp, err := postJSON(tr, p.Target, p.path(), body)
		if err != nil {
			return nil, err
		}
		var parsed rpcResponse
		if err := json.Unmarshal(resp.Body, &parsed); err != nil {
			return nil, ecode.Wrap(ecode.Malformed, err)
		}
		return &RPCResult{ID: parsed.ID, Result: parsed.Result, Error: parsed.Error}, nil
	})
}

// BatchParams is the `/api/jsonrpc/batch` request.
type BatchParams struct {
	Target transport.Target
	Path   string
	Calls  []RPCCall
}

func (p BatchParams) path() string {
	if p.Path == "" {
		return "/"
	}
	return p.Path
}

// Batch sends a JSON-RPC batch request. By design, the IDs in the wire
// request are always this function's own 1..N sequence; RPCCall has
// no ID field, so this gateway's request shape offers no caller-facing
// ID input.
func Batch(ctx context.Context, p BatchParams) ([]RPCResult, error) {
	if len(p.Calls) == 0 {
		return nil, ecode.New(ecode.Validation, "jsonrpc: batch requires at least one call")
	}
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) ([]RPCResult, error) {
		reqs := make([]rpcRequest, len(p.Calls))
		for i, c := range p.Calls {
			reqs[i] = rpcRequest{JSONRPC: "2.0", ID: i + 1, Method: c.Method, Params: c.Params}
		}
		body, err := json.Marshal(reqs)
		if err != nil {
			return nil, ecode.Wrap(ecode.Internal, err)
		}
		resp, err := postJSON(tr, p.Target, p.path(), body)
		if err != nil {
			return nil, err
		}
		var parsed []rpcResponse
		if err := json.Unmarshal(resp.Body, &parsed); err != nil {
			return nil, ecode.Wrap(ecode.Malformed, err)
		}
		out := make([]RPCResult, len(parsed))
		for i, r := range parsed {
			out[i] = RPCResult{ID: r.ID, Result: r.Result, Error: r.Error}
		}
		return out, nil
	})
}

func postJSON(tr *transport.Transport, target transport.Target, path string, body []byte) (*framing.HTTPResponse, error) {
	hostHeader := fmt.Sprintf("%s:%d", target.Host, target.Port)
	headers := [][2]string{{"Content-Type", "application/json"}}
	req := buildRequest("POST", path, hostHeader, headers, body)
	resp, err := readResponse(tr, req, jsonrpcResponseCap)
	if err != nil {
		return nil, err
	}
	if err := requireSuccess(resp, "jsonrpc"); err != nil {
		return nil, err
	}
	return resp, nil
}
