/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package smb2

import (
	"context"
	"time"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const responseCap = 64 * 1024

// Params describes one probe: the target, the share to connect, and the
// credentials to present (empty username/password means anonymous/guest).
type Params struct {
	Target   transport.Target
	Share    string
	Username string
	Password string
	Domain   string
}

// conn tracks the per-session mutable state every SMB2 message needs:
// the next MessageId, the assigned SessionId, and (once TREE_CONNECT
// succeeds) the TreeId. One conn is shared between a session's body and
// its cleanup so TREE_DISCONNECT/LOGOFF carry the right IDs.
type conn struct {
	tr        *transport.Transport
	messageID uint64
	sessionID uint64
	treeID    uint32
}

func (c *conn) send(pdu []byte) error { return c.tr.Write(pdu) }

func (c *conn) recv() ([]byte, error) {
	return c.tr.NewCappedReader(responseCap).ReadSMB2Message(responseCap)
}

func (c *conn) next() uint64 {
	id := c.messageID
	c.messageID++
	return id
}

// runSMB2 opens a transport, hands the caller a *conn bound to it, and
// on the way out always runs TREE_DISCONNECT + LOGOFF against whatever
// state body left behind.
func runSMB2[T any](ctx context.Context, p Params, body func(c *conn) (T, error)) (T, error) {
	c := &conn{}
	return session.Run(ctx, p.Target, func(tr *transport.Transport) {
		c.tr = tr
		cleanupSession(c)
	}, func(tr *transport.Transport) (T, error) {
		c.tr = tr
		return body(c)
	})
}

func cleanupSession(c *conn) {
	if c.treeID != 0 {
		_ = c.send(BuildTreeDisconnectRequest(c.next(), c.sessionID, c.treeID))
		_, _ = c.recv()
	}
	if c.sessionID != 0 {
		_ = c.send(BuildLogoffRequest(c.next(), c.sessionID))
		_, _ = c.recv()
	}
}

// negotiateAndAuth performs NEGOTIATE then the NTLMv2 SESSION_SETUP
// handshake, leaving c.sessionID populated on success.
func negotiateAndAuth(c *conn, p Params) (*NegotiateResult, *SessionSetupResult, error) {
	if err := c.send(BuildNegotiateRequest()); err != nil {
		return nil, nil, err
	}
	c.next()
	negPDU, err := c.recv()
	if err != nil {
		return nil, nil, err
	}
	neg, err := ParseNegotiateResponse(negPDU)
	if err != nil {
		return nil, nil, err
	}

	ft := filetimeNow()
	setup, err := NTLMv2SessionSetup(
		func(pdu []byte) error { return c.send(pdu) },
		func() ([]byte, error) { return c.recv() },
		p.Username, p.Password, p.Domain, ft,
	)
	if err != nil {
		return neg, nil, err
	}
	c.messageID = 3
	if setup.Status == StatusLogonFailure {
		return neg, setup, ecode.New(ecode.AuthFail, "smb2: logon failure").WithWireCode(setup.Status)
	}
	if setup.Status != StatusSuccess {
		return neg, setup, statusError(setup.Status, "session setup failed")
	}
	c.sessionID = setup.SessionID
	return neg, setup, nil
}

// filetimeNow renders the current time as a FILETIME with second
// precision, sufficient for the NTLMv2 blob timestamp (the peer does
// not validate it, per common NTLMv2 server behavior).
func filetimeNow() uint64 {
	return uint64(time.Now().Unix()+11644473600) * 10000000
}

func connectTree(c *conn, host, share string) (*TreeConnectResult, error) {
	req, err := BuildTreeConnectRequest(c.next(), c.sessionID, host, share)
	if err != nil {
		return nil, err
	}
	if err := c.send(req); err != nil {
		return nil, err
	}
	pdu, err := c.recv()
	if err != nil {
		return nil, err
	}
	tc, err := ParseTreeConnectResponse(pdu)
	if err != nil {
		return nil, err
	}
	c.treeID = tc.TreeID
	return tc, nil
}

// sessionFlagsLabel renders SESSION_SETUP's SessionFlags bitfield the
// way every endpoint's JSON response documents it.
func sessionFlagsLabel(flags uint16) string {
	switch {
	case flags&0x1 != 0:
		return "GUEST"
	case flags&0x2 != 0:
		return "NULL"
	default:
		return "AUTHENTICATED"
	}
}

// ProbeResult is the `/api/smb2/probe` success payload.
type ProbeResult struct {
	Dialect       uint16
	Capabilities  uint32
	ServerTimeUTC time.Time
	SessionFlags  string
	ShareType     byte
}

// Probe runs NEGOTIATE + SESSION_SETUP + TREE_CONNECT only, reporting
// the negotiated dialect and session flags without touching any file.
func Probe(ctx context.Context, p Params) (*ProbeResult, error) {
	return runSMB2(ctx, p, func(c *conn) (*ProbeResult, error) {
		neg, setup, err := negotiateAndAuth(c, p)
		if err != nil {
			return nil, err
		}
		tc, err := connectTree(c, p.Target.Host, p.Share)
		if err != nil {
			return nil, err
		}
		return &ProbeResult{
			Dialect:       neg.Dialect,
			Capabilities:  neg.Capabilities,
			ServerTimeUTC: neg.ServerTimeUTC,
			SessionFlags:  sessionFlagsLabel(setup.SessionFlags),
			ShareType:     tc.ShareType,
		}, nil
	})
}
