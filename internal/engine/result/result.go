/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package result defines the Operation result tagged union every
// protocol operation returns: either an "ok" with
// operation-specific fields, or an "error" carrying an errorKind, a
// human string, and an optional wire-level code. Handler adaptors map
// this shape to the per-endpoint JSON response.
package result

import "github.com/rossgg/portofcall/internal/engine/ecode"

// Result is the generic wrapper every protocol operation function
// returns. Fields, when non-nil, is the operation-specific success
// payload (an SMB2 negotiate summary, an iSCSI login outcome, ...);
// protocol codecs populate it with their own concrete struct.
type Result struct {
	Kind   string      `json:"kind"` // "ok" or "error"
	Fields interface{} `json:"fields,omitempty"`
	Error  *ErrorField `json:"error,omitempty"`
}

// ErrorField is the "error" arm's payload.
type ErrorField struct {
	Kind     ecode.Kind  `json:"errorKind"`
	Message  string      `json:"message,omitempty"`
	WireCode interface{} `json:"wireCode,omitempty"`
}

// Ok wraps a successful operation payload.
func Ok(fields interface{}) Result {
	return Result{Kind: "ok", Fields: fields}
}

// FromError converts any error returned by the engine into the "error"
// arm, defaulting untyped errors to ecode.Internal.
func FromError(err error) Result {
	if err == nil {
		return Result{Kind: "ok"}
	}
	if e, ok := err.(*ecode.Error); ok {
		return Result{Kind: "error", Error: &ErrorField{
			Kind:     e.Kind,
			Message:  e.Error(),
			WireCode: e.WireCode,
		}}
	}
	return Result{Kind: "error", Error: &ErrorField{
		Kind:    ecode.Internal,
		Message: err.Error(),
	}}
}
