/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package thrift

import (
	"context"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// readFramedMessage reads the 4-byte BE length prefix then decodes the
// Binary Protocol v1 message it carries.
func readFramedMessage(tr *transport.Transport) (*decodedMessage, error) {
	r := tr.NewCappedReader(responseCap)
	body, err := r.ReadU32BELengthPrefixed(responseCap)
	if err != nil {
		return nil, err
	}
	return decodeMessage(body)
}

func writeFramedMessage(tr *transport.Transport, msg []byte) error {
	framed := make([]byte, 4+len(msg))
	putU32BE(framed, uint32(len(msg)))
	copy(framed[4:], msg)
	return tr.Write(framed)
}

func putU32BE(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

// Params is shared by `probe` and `call`.
type Params struct {
	Target     transport.Target
	MethodName string
	SeqID      int32
}

// ProbeResult is the `/api/thrift/probe` payload: a zero-argument call
// to confirm a Thrift server is listening and speaking Binary Protocol.
type ProbeResult struct {
	Method      string
	MsgType     int32
	IsException bool
}

// Probe sends a zero-field call frame and reports what came back,
// without interpreting any response fields.
func Probe(ctx context.Context, p Params) (*ProbeResult, error) {
	method := p.MethodName
	if method == "" {
		method = "ping"
	}
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*ProbeResult, error) {
		req := encodeMessage(MsgCall, method, p.SeqID, nil)
		if err := writeFramedMessage(tr, req); err != nil {
			return nil, err
		}
		resp, err := readFramedMessage(tr)
		if err != nil {
			return nil, err
		}
		return &ProbeResult{Method: resp.Method, MsgType: resp.MsgType, IsException: resp.MsgType == MsgException}, nil
	})
}

// CallParams is the `/api/thrift/call` request: an RPC with caller
// supplied struct fields.
type CallParams struct {
	Params
	Fields []CallField
}

// CallField is one argument field of the outgoing call struct.
type CallField struct {
	Type  byte
	ID    int16
	Value interface{}
}

// CallResult is the decoded reply or exception struct.
type CallResult struct {
	Method      string
	IsException bool
	Fields      []ResultField
}

// ResultField is one decoded field of the reply struct. LIST/SET values
// come back as []interface{} and MAP values as map[interface{}]interface{},
// each holding at most the first 20 elements (see decodeValue); a nested
// STRUCT field's Value is nil, which callers should treat as
// present-but-opaque.
type ResultField struct {
	Type  byte
	ID    int16
	Value interface{}
}

// Call sends one Thrift RPC and decodes its reply (or EXCEPTION, which
// is returned as a result with IsException set, not as an error).
func Call(ctx context.Context, p CallParams) (*CallResult, error) {
	if p.MethodName == "" {
		return nil, ecode.New(ecode.Validation, "thrift: methodName is required")
	}
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*CallResult, error) {
		var fields []field
		for _, f := range p.Fields {
			fields = append(fields, field{Type: f.Type, ID: f.ID, Value: f.Value})
		}
		req := encodeMessage(MsgCall, p.MethodName, p.SeqID, fields)
		if err := writeFramedMessage(tr, req); err != nil {
			return nil, err
		}
		resp, err := readFramedMessage(tr)
		if err != nil {
			return nil, err
		}
		if resp.MsgType != MsgReply && resp.MsgType != MsgException {
			return nil, ecode.New(ecode.UnexpectedMsg, "thrift: expected REPLY or EXCEPTION message")
		}
		out := &CallResult{Method: resp.Method, IsException: resp.MsgType == MsgException}
		for _, f := range resp.Fields {
			out.Fields = append(out.Fields, ResultField{Type: f.Type, ID: f.ID, Value: f.Value})
		}
		return out, nil
	})
}
