/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package textline

import (
	"context"
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// Erlang Port Mapper Daemon request opcodes, per the EPMD wire protocol.
const (
	epmdNamesReq       byte = 110
	epmdPortPlease2Req byte = 122
	epmdPort2Resp      byte = 119
)

// EPMDNamesResult is the `/api/epmd/names` success payload: the daemon's
// listening port plus the registered name/port pairs it reports.
type EPMDNamesResult struct {
	EPMDPort uint32
	Nodes    []EPMDNode
}

// EPMDNode is one "name X at port Y" line from the NAMES response.
type EPMDNode struct {
	Name string
	Port int
}

// Names sends the NAMES request (opcode 110) and reads until the peer
// closes the connection, per spec §4.4.7's "EPMD: no framing" note.
func Names(ctx context.Context, t transport.Target) (*EPMDNamesResult, error) {
	return session.Run(ctx, t, nil, func(tr *transport.Transport) (*EPMDNamesResult, error) {
		req := make([]byte, 3)
		binary.BigEndian.PutUint16(req[0:2], 1)
		req[2] = epmdNamesReq
		if err := tr.Write(req); err != nil {
			return nil, err
		}
		raw, err := tr.NewCappedReader(64*1024).ReadUntilClose()
		if err != nil {
			return nil, err
		}
		if len(raw) < 4 {
			return nil, ecode.New(ecode.Malformed, "epmd: NAMES response shorter than 4 bytes")
		}
		res := &EPMDNamesResult{EPMDPort: binary.BigEndian.Uint32(raw[:4])}
		for _, line := range strings.Split(string(raw[4:]), "\n") {
			line = strings.TrimSpace(line)
			if line == `` {
				continue
			}
			fields := strings.Fields(line)
			node := EPMDNode{}
			for i, f := range fields {
				if f == "name" && i+1 < len(fields) {
					node.Name = fields[i+1]
				}
				if f == "at" && i+2 < len(fields) && fields[i+1] == "port" {
					if p, perr := strconv.Atoi(fields[i+2]); perr == nil {
						node.Port = p
					}
				}
			}
			if node.Name != `` {
				res.Nodes = append(res.Nodes, node)
			}
		}
		return res, nil
	})
}

// EPMDPortParams is the `/api/epmd/portplease` request.
type EPMDPortParams struct {
	Target   transport.Target
	NodeName string
}

// EPMDPortResult is the PORT2_RESP (opcode 119) decoded fields.
type EPMDPortResult struct {
	Found    bool
	Port     int
	NodeType byte
	Protocol byte
	HighVsn  uint16
	LowVsn   uint16
}

// PortPlease sends PORT_PLEASE2 (opcode 122) for NodeName and decodes
// the fixed-layout PORT2_RESP.
func PortPlease(ctx context.Context, p EPMDPortParams) (*EPMDPortResult, error) {
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*EPMDPortResult, error) {
		body := append([]byte{epmdPortPlease2Req}, []byte(p.NodeName)...)
		req := make([]byte, 2+len(body))
		binary.BigEndian.PutUint16(req[0:2], uint16(len(body)))
		copy(req[2:], body)
		if err := tr.Write(req); err != nil {
			return nil, err
		}
		r := tr.NewCappedReader(512)
		hdr, err := r.ReadExactly(2)
		if err != nil {
			return nil, err
		}
		if hdr[0] != epmdPort2Resp {
			return nil, ecode.New(ecode.UnexpectedMsg, "epmd: unexpected response opcode")
		}
		if hdr[1] != 0 {
			return &EPMDPortResult{Found: false}, nil
		}
		rest, err := r.ReadExactly(8)
		if err != nil {
			return nil, err
		}
		nlenBuf, err := r.ReadExactly(2)
		if err != nil {
			return nil, err
		}
		nlen := binary.BigEndian.Uint16(nlenBuf)
		if _, err := r.ReadExactly(int(nlen)); err != nil {
			return nil, err
		}
		return &EPMDPortResult{
			Found:    true,
			Port:     int(binary.BigEndian.Uint16(rest[0:2])),
			NodeType: rest[2],
			Protocol: rest[3],
			HighVsn:  binary.BigEndian.Uint16(rest[4:6]),
			LowVsn:   binary.BigEndian.Uint16(rest[6:8]),
		}, nil
	})
}
