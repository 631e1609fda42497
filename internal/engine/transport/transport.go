/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package transport is the thin wrapper around a TCP/TLS socket that
// every protocol codec in protocols/ reads and writes through: open,
// write, and a framed byte-stream reader, all bounded by a single
// wall-clock deadline. It guarantees release of the
// underlying socket on every exit path and converts peer-close into
// end-of-stream rather than a surprising error.
package transport

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/framing"
)

// TLSOptions mirrors Target.tls block.
type TLSOptions struct {
	Enabled bool
	SNIHost string
	ALPN    string
	// InsecureSkipVerify exists for lab/self-signed targets explicitly
	// opted into by the caller; it is never the default.
	InsecureSkipVerify bool
}

// Target is the immutable dial description for one session.
type Target struct {
	Host      string
	Port      int
	DeadlineMs int
	TLS       *TLSOptions
}

// Addr renders the target as a host:port pair suitable for net.Dial.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Transport is exclusively owned by the session runner for the life of
// one probe. At most one reader and one writer are active at a time;
// Close releases both before closing the socket.
type Transport struct {
	conn     net.Conn
	reader   *framing.Reader
	deadline time.Time

	mu     sync.Mutex
	closed bool
}

// Open performs DNS resolution (implicitly, via net.Dial), TCP connect,
// and if requested a TLS handshake, all bounded by target.DeadlineMs
// measured from the call to Open.
func Open(ctx context.Context, target Target) (*Transport, error) {
	if target.DeadlineMs <= 0 {
		return nil, ecode.New(ecode.Validation, "transport: deadline must be positive")
	}
	deadline := time.Now().Add(time.Duration(target.DeadlineMs) * time.Millisecond)

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", target.Addr())
	if err != nil {
		return nil, classifyDialError(err)
	}

	if target.TLS != nil && target.TLS.Enabled {
		cfg := &tls.Config{
			MinVersion:         tls.VersionTLS12,
			ServerName:         target.TLS.SNIHost,
			InsecureSkipVerify: target.TLS.InsecureSkipVerify,
		}
		if cfg.ServerName == `` {
			cfg.ServerName = target.Host
		}
		if target.TLS.ALPN != `` {
			cfg.NextProtos = []string{target.TLS.ALPN}
		}
		tlsConn := tls.Client(conn, cfg)
		if err := tlsConn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, ecode.Wrap(ecode.Internal, err)
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, ecode.New(ecode.TLSFail, "transport: TLS handshake failed: "+err.Error())
		}
		conn = tlsConn
	}

	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, ecode.Wrap(ecode.Internal, err)
	}

	tr := &Transport{conn: conn, deadline: deadline}
	tr.reader = framing.NewReader(deadlineConn{conn}, 0)
	tr.reader.SetDeadline(deadline)
	return tr, nil
}

// deadlineConn adapts net.Conn to framing.ByteReader.
type deadlineConn struct{ net.Conn }

func (d deadlineConn) SetReadDeadline(t time.Time) error { return d.Conn.SetReadDeadline(t) }

// Write writes b atomically with respect to the byte sequence: either
// the whole slice reaches the socket buffer, or the write fails as a
// whole and the transport should be considered unusable by the caller.
func (t *Transport) Write(b []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ecode.New(ecode.Internal, "transport: write on closed transport")
	}
	written := 0
	for written < len(b) {
		n, err := t.conn.Write(b[written:])
		written += n
		if err != nil {
			if isTimeoutErr(err) {
				return ecode.New(ecode.Timeout, "transport: write deadline expired")
			}
			return ecode.Wrap(ecode.Internal, err)
		}
	}
	return nil
}

// Reader returns the framed reader bound to this transport, with no
// accumulation cap of its own; most codecs call NewCappedReader instead
// to apply their own per-protocol response cap.
func (t *Transport) Reader() *framing.Reader {
	return t.reader
}

// NewCappedReader builds a fresh framing.Reader sharing this
// transport's connection and deadline, capped at capBytes. The
// framing.Reader itself has no exported cap setter since its cap is
// fixed at construction, so protocol codecs that need a distinct cap
// per message type (or a tighter cap than the session default) get
// their own reader instance rather than mutating a shared one.
func (t *Transport) NewCappedReader(capBytes int) *framing.Reader {
	r := framing.NewReader(deadlineConn{t.conn}, capBytes)
	r.SetDeadline(t.deadline)
	return r
}

// RemainingDeadline returns the time left before the session's wall
// clock deadline fires, used by the session runner to clamp cleanup
// sub-deadlines.
func (t *Transport) RemainingDeadline() time.Duration {
	return time.Until(t.deadline)
}

// Close is idempotent: it releases the writer/reader locks implicitly
// (both are exclusively owned by the caller's single goroutine) and
// closes the socket exactly once, swallowing close errors.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	_ = t.conn.Close()
	return nil
}

func isTimeoutErr(err error) bool {
	type timeouter interface{ Timeout() bool }
	if te, ok := err.(timeouter); ok {
		return te.Timeout()
	}
	return false
}

func classifyDialError(err error) error {
	if isTimeoutErr(err) {
		return ecode.New(ecode.Timeout, "transport: connect deadline expired")
	}
	if opErr, ok := err.(*net.OpError); ok {
		if opErr.Op == "dial" {
			if dnsErr, ok := opErr.Err.(*net.DNSError); ok {
				_ = dnsErr
				return ecode.New(ecode.DNS, "transport: "+err.Error())
			}
		}
		if sysErr, ok := opErr.Err.(interface{ Error() string }); ok {
			if contains(sysErr.Error(), "refused") {
				return ecode.New(ecode.Refused, "transport: connection refused")
			}
		}
	}
	if contains(err.Error(), "refused") {
		return ecode.New(ecode.Refused, "transport: connection refused")
	}
	if contains(err.Error(), "no such host") || contains(err.Error(), "lookup") {
		return ecode.New(ecode.DNS, "transport: "+err.Error())
	}
	return ecode.Wrap(ecode.Internal, err)
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
