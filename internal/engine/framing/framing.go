/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package framing implements the read-until-predicate helpers every
// protocol codec drives: read-exactly-N, read-until-delimiter,
// read-length-prefixed in several widths, an HTTP response reader, and an
// SMB2 NetBIOS frame reader. Every reader here is bounded by a caller
// supplied cap and a deadline; none of them retain state across a
// successful frame read beyond the unconsumed trailing bytes.
package framing

import (
	"io"
	"time"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// ByteReader is the minimal source a Reader consumes from: the
// transport's underlying connection (or anything io.Reader-shaped, which
// keeps this package testable without a live socket).
type ByteReader interface {
	Read(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
}

// Reader accumulates bytes from a ByteReader into a grow-to-cap buffer
// and exposes the read-exactly-N / read-until-delimiter / read-length-
// prefixed primitives in readers.go. It owns exactly one accumulation
// buffer; framing readers slice the consumed prefix off the front
// after each successful frame so unread bytes carry forward to the
// next call, never duplicated or dropped.
type Reader struct {
	src    ByteReader
	buf    []byte
	cap    int
	eof    bool
	deadline time.Time
}

// NewReader builds a framed Reader over src, capping total accumulation
// at capBytes (the per-protocol response cap the caller supplies).
func NewReader(src ByteReader, capBytes int) *Reader {
	return &Reader{src: src, cap: capBytes}
}

// SetDeadline sets the wall-clock deadline all reads below respect.
func (r *Reader) SetDeadline(d time.Time) {
	r.deadline = d
	if r.src != nil {
		r.src.SetReadDeadline(d)
	}
}

// Buffered returns the bytes currently accumulated but not yet consumed
// by a framing call — exposed for tests asserting invariant 3.
func (r *Reader) Buffered() []byte { return r.buf }

// Reset discards any buffered bytes; used when a codec intentionally
// abandons a partially-read frame (e.g. after a protocol-level reject
// the peer is not expected to send more on this stream).
func (r *Reader) Reset() { r.buf = nil; r.eof = false }

// fill reads more bytes from src into buf until at least need bytes are
// buffered, EOF is reached, or the cap/deadline is hit.
func (r *Reader) fill(need int) error {
	for len(r.buf) < need {
		if r.cap > 0 && need > r.cap {
			return ecode.New(ecode.LimitExceeded, "framing: requested frame exceeds cap")
		}
		if r.eof {
			return ecode.New(ecode.ShortRead, "framing: peer closed before expected bytes")
		}
		chunk := make([]byte, 4096)
		n, err := r.src.Read(chunk)
		if n > 0 {
			if r.cap > 0 && len(r.buf)+n > r.cap {
				return ecode.New(ecode.LimitExceeded, "framing: accumulated buffer exceeds cap")
			}
			r.buf = append(r.buf, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				r.eof = true
				continue
			}
			if isTimeout(err) {
				return ecode.New(ecode.Timeout, "framing: deadline expired waiting for bytes")
			}
			return ecode.Wrap(ecode.ShortRead, err)
		}
	}
	return nil
}

// growUntil reads until pred(buf) reports done, or EOF/cap/deadline.
// pred may inspect r.buf freely (read-only) between reads; when it
// reports done, consumed is the length of the frame to return. When it
// is not done its count is ignored and one more chunk is read.
func (r *Reader) growUntil(pred func(buf []byte) (done bool, consumed int)) ([]byte, error) {
	for {
		if done, consumed := pred(r.buf); done {
			out := r.buf[:consumed]
			r.buf = r.buf[consumed:]
			return out, nil
		}
		if r.cap > 0 && len(r.buf) >= r.cap {
			return nil, ecode.New(ecode.LimitExceeded, "framing: accumulated buffer exceeds cap without completing frame")
		}
		if r.eof {
			return nil, ecode.New(ecode.ShortRead, "framing: peer closed before frame completed")
		}
		chunk := make([]byte, 4096)
		n, err := r.src.Read(chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				r.eof = true
				continue
			}
			if isTimeout(err) {
				return nil, ecode.New(ecode.Timeout, "framing: deadline expired waiting for frame")
			}
			return nil, ecode.Wrap(ecode.ShortRead, err)
		}
	}
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if te, ok := err.(timeouter); ok {
		return te.Timeout()
	}
	return false
}
