/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package amqp091 implements the `/api/amqp091/probe` probe from
// SPEC_FULL's additional-protocols table: a hand-rolled AMQP 0-9-1
// (the RabbitMQ wire, distinct from the 1.0 protocol in
// protocols/amqp) protocol-header plus connection.start/start-ok
// handshake over the common transport, in the spec's house style of
// hand-rolling bit-exact wire formats rather than pulling in a client
// library for a single-frame probe.
package amqp091

import (
	"context"
	"encoding/binary"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/framing"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const responseCap = 64 * 1024

// Frame types, per the AMQP 0-9-1 spec.
const (
	frameMethod byte = 1
	frameEnd    byte = 0xCE
)

// connection class/method IDs used by this probe.
const (
	classConnection        uint16 = 10
	methodConnectionStart  uint16 = 10
	methodConnectionStartOk uint16 = 11
)

// Params is the `/api/amqp091/probe` request.
type Params struct {
	Target   transport.Target
	Username string
	Password string
}

// Result is the decoded connection.start payload plus whether the
// peer accepted our connection.start-ok.
type Result struct {
	VersionMajor byte
	VersionMinor byte
	ServerProps  map[string]string
	Mechanisms   []string
	Locales      []string
	Accepted     bool
}

// Probe sends the AMQP 0-9-1 protocol header ("AMQP" 0 0 9 1), reads
// the server's connection.start method, and replies with a
// connection.start-ok carrying PLAIN credentials (an empty username and
// password if none were supplied), reporting whether the peer tuned the
// connection instead of closing it.
func Probe(ctx context.Context, p Params) (*Result, error) {
	return session.Run(ctx, p.Target, amqpCleanup, func(tr *transport.Transport) (*Result, error) {
		header := []byte{'A', 'M', 'Q', 'P', 0, 0, 9, 1}
		if err := tr.Write(header); err != nil {
			return nil, err
		}

		r := tr.NewCappedReader(responseCap)
		frame, err := readFrame(r)
		if err != nil {
			return nil, err
		}
		res, err := decodeConnectionStart(frame)
		if err != nil {
			return nil, err
		}

		startOk := encodeConnectionStartOk(p.Username, p.Password)
		if err := tr.Write(startOk); err != nil {
			return nil, err
		}

		next, err := readFrame(r)
		if err != nil {
			return nil, err
		}
		class, method, _ := decodeMethodHeader(next.payload)
		res.Accepted = class == classConnection && method == 30 // connection.tune
		return res, nil
	})
}

func amqpCleanup(tr *transport.Transport) {
	// Best-effort connection.close; the server is about to see a
	// dropped TCP connection regardless, which it treats the same way.
	frame := encodeMethodFrame(classConnection, 50, nil)
	_ = tr.Write(frame)
}

type rawFrame struct {
	kind    byte
	channel uint16
	payload []byte
}

func readFrame(r *framing.Reader) (*rawFrame, error) {
	hdr, err := r.ReadExactly(7)
	if err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(hdr[3:7])
	body, err := r.ReadExactly(int(size))
	if err != nil {
		return nil, err
	}
	end, err := r.ReadExactly(1)
	if err != nil {
		return nil, err
	}
	if end[0] != frameEnd {
		return nil, ecode.New(ecode.Malformed, "amqp091: missing frame-end octet")
	}
	return &rawFrame{kind: hdr[0], channel: binary.BigEndian.Uint16(hdr[1:3]), payload: body}, nil
}

func decodeMethodHeader(payload []byte) (class, method uint16, rest []byte) {
	if len(payload) < 4 {
		return 0, 0, nil
	}
	return binary.BigEndian.Uint16(payload[0:2]), binary.BigEndian.Uint16(payload[2:4]), payload[4:]
}

func decodeConnectionStart(f *rawFrame) (*Result, error) {
	if f.kind != frameMethod {
		return nil, ecode.New(ecode.UnexpectedMsg, "amqp091: expected a method frame")
	}
	class, method, rest := decodeMethodHeader(f.payload)
	if class != classConnection || method != methodConnectionStart {
		return nil, ecode.New(ecode.UnexpectedMsg, "amqp091: expected connection.start")
	}
	if len(rest) < 2 {
		return nil, ecode.New(ecode.Malformed, "amqp091: connection.start too short")
	}
	res := &Result{VersionMajor: rest[0], VersionMinor: rest[1]}
	rest = rest[2:]

	props, rest, err := decodeFieldTable(rest)
	if err != nil {
		return nil, err
	}
	res.ServerProps = props

	mech, rest, err := decodeLongString(rest)
	if err != nil {
		return nil, err
	}
	res.Mechanisms = splitSpace(mech)

	locales, _, err := decodeLongString(rest)
	if err != nil {
		return nil, err
	}
	res.Locales = splitSpace(locales)
	return res, nil
}

func splitSpace(s string) []string {
	var out []string
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	return out
}
