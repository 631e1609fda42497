/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package ecode defines the engine-wide error taxonomy. Every framing
// reader, transport, crypto helper and protocol operation returns errors
// built from this package rather than ad-hoc strings, so handler adaptors
// can map a single authoritative Kind to the HTTP status/JSON shape each
// endpoint documents.
package ecode

import "fmt"

// Kind is the engine's internal error classification, per spec §7.
type Kind string

const (
	Validation      Kind = "VALIDATION"
	Blocked         Kind = "BLOCKED"
	DNS             Kind = "DNS"
	Refused         Kind = "REFUSED"
	TLSFail         Kind = "TLS_FAIL"
	Timeout         Kind = "TIMEOUT"
	ShortRead       Kind = "SHORT_READ"
	LimitExceeded   Kind = "LIMIT_EXCEEDED"
	Malformed       Kind = "MALFORMED"
	UnexpectedMsg   Kind = "UNEXPECTED_MSG"
	AuthFail        Kind = "AUTH_FAIL"
	AuthFailVerify  Kind = "AUTH_FAIL_VERIFY"
	ProtocolError   Kind = "PROTOCOL_ERROR"
	Internal        Kind = "INTERNAL"
)

// Error is the engine's typed error. WireCode, when non-nil, carries the
// protocol-level code verbatim (HTTP status, SMB NTStatus, RADIUS code,
// iSCSI login status class/detail, PCEP error type/value, ...).
type Error struct {
	Kind    Kind
	Message string
	WireCode interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != `` {
		return e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with the given kind and message.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Newf builds an *Error with a formatted message.
func Newf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an underlying error, preserving it as Cause.
// A cause that is already an *Error is returned unchanged, keeping its
// own Kind.
func Wrap(k Kind, cause error) *Error {
	if cause == nil {
		return nil
	}
	if e, ok := cause.(*Error); ok {
		return e
	}
	return &Error{Kind: k, Cause: cause}
}

// WithWireCode returns a copy of e carrying the given wire-level code.
func (e *Error) WithWireCode(code interface{}) *Error {
	n := *e
	n.WireCode = code
	return &n
}

// Is reports whether err is an *Error of Kind k, unwrapping as needed.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == k
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to Internal for untyped
// errors so every caller has a defined mapping.
func KindOf(err error) Kind {
	if err == nil {
		return ``
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return Internal
}
