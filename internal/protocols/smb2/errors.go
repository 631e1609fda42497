/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package smb2

import "github.com/rossgg/portofcall/internal/engine/ecode"

func errShortMessage() error {
	return ecode.New(ecode.Malformed, "smb2: message shorter than fixed header")
}

func errUnexpected(what string) error {
	return ecode.New(ecode.UnexpectedMsg, "smb2: "+what)
}

// statusError wraps a non-success NTStatus as a PROTOCOL_ERROR carrying
// the status verbatim as the wire code. It maps every status it is given;
// callers check statuses they handle as a distinct outcome (e.g.
// AUTH_FAIL) before calling it.
func statusError(status uint32, context string) error {
	return ecode.New(ecode.ProtocolError, "smb2: "+context).WithWireCode(status)
}
