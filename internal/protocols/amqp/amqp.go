/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package amqp implements the `/api/amqp/probe` probe from SPEC_FULL's
// additional-protocols table: an AMQP 1.0 connection Open plus a Session
// Begin against a broker (or any 1.0 peer — ActiveMQ, Azure Service
// Bus, qpid), built on Azure/go-amqp, which owns the connection and
// frame codec itself.
package amqp

import (
	"context"
	"net"
	"strconv"
	"time"

	amqp "github.com/Azure/go-amqp"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// Params is the `/api/amqp/probe` request.
type Params struct {
	Host       string
	Port       int
	DeadlineMs int
	Username   string
	Password   string
}

// Result reports the Session Begin outcome. Probe sets only
// SessionOpened; ContainerID and MaxFrameSize are always left at their
// zero values.
type Result struct {
	ContainerID   string
	MaxFrameSize  uint32
	SessionOpened bool
}

// Probe opens an AMQP 1.0 connection and a session, then closes both.
func Probe(ctx context.Context, p Params) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.DeadlineMs)*time.Millisecond)
	defer cancel()

	addr := "amqp://" + net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	opts := &amqp.ConnOptions{}
	if p.Username != `` {
		opts.SASLType = amqp.SASLTypePlain(p.Username, p.Password)
	}

	conn, err := amqp.Dial(ctx, addr, opts)
	if err != nil {
		if isTimeout(err) {
			return nil, ecode.New(ecode.Timeout, "amqp: connection open timed out")
		}
		return nil, ecode.New(ecode.Refused, "amqp: connection open failed: "+err.Error())
	}
	defer conn.Close()

	res := &Result{}

	session, err := conn.NewSession(ctx, nil)
	if err != nil {
		return nil, ecode.New(ecode.ProtocolError, "amqp: session begin failed: "+err.Error())
	}
	defer session.Close(ctx)
	res.SessionOpened = true

	return res, nil
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
