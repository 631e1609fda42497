/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package websocket implements the `/api/websocket/probe` probe from
// SPEC_FULL's additional-protocols table: an HTTP Upgrade handshake,
// optional subprotocol negotiation, and one ping/pong round trip, built
// on gorilla/websocket (which owns the TCP/TLS dial and the HTTP
// Upgrade exchange itself).
package websocket

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// Params is the `/api/websocket/probe` request.
type Params struct {
	Host         string
	Port         int
	Path         string
	TLS          bool
	DeadlineMs   int
	Subprotocols []string
}

// Result reports the negotiated subprotocol and whether the server
// answered the probe's ping with a pong before the deadline.
type Result struct {
	StatusCode          int
	NegotiatedProtocol  string
	ServerHeader        string
	PongReceived        bool
}

// Probe dials a WebSocket Upgrade request and, on success, sends one
// ping frame, waiting up to DeadlineMs (counted from after the
// handshake) for the pong.
func Probe(p Params) (*Result, error) {
	scheme := "ws"
	if p.TLS {
		scheme = "wss"
	}
	path := p.Path
	if path == `` {
		path = "/"
	}
	url := fmt.Sprintf("%s://%s:%d%s", scheme, p.Host, p.Port, path)

	dialer := &websocket.Dialer{
		HandshakeTimeout: time.Duration(p.DeadlineMs) * time.Millisecond,
		Subprotocols:     p.Subprotocols,
		TLSClientConfig:  &tls.Config{MinVersion: tls.VersionTLS12},
	}

	conn, resp, err := dialer.Dial(url, http.Header{})
	if err != nil {
		if resp != nil {
			return nil, ecode.Newf(ecode.ProtocolError, "websocket: upgrade rejected: %s", resp.Status).WithWireCode(resp.StatusCode)
		}
		if isTimeout(err) {
			return nil, ecode.New(ecode.Timeout, "websocket: handshake timed out")
		}
		return nil, ecode.New(ecode.Refused, "websocket: dial failed: "+err.Error())
	}
	defer conn.Close()

	res := &Result{StatusCode: resp.StatusCode, NegotiatedProtocol: conn.Subprotocol(), ServerHeader: resp.Header.Get("Server")}

	pongCh := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pongCh <- struct{}{}:
		default:
		}
		return nil
	})

	deadline := time.Now().Add(time.Duration(p.DeadlineMs) * time.Millisecond)
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		return res, nil
	}

	_ = conn.SetReadDeadline(deadline)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pongCh:
		res.PongReceived = true
	case <-time.After(time.Until(deadline)):
	case <-done:
	}
	return res, nil
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
