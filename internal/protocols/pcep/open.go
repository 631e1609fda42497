/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package pcep

import "github.com/rossgg/portofcall/internal/engine/ecode"

const openObjectType byte = 1

// OpenParams are the OPEN object's fixed fields (no TLVs needed for a
// basic probe).
type OpenParams struct {
	Keepalive byte
	Deadtimer byte
	SessionID byte
}

func encodeOpenMessage(p OpenParams) []byte {
	value := []byte{pcepVersion << 5, p.Keepalive, p.Deadtimer, p.SessionID}
	obj := encodeObject(ClassOpen, openObjectType, false, false, value)
	return append(encodeCommonHeader(MsgOpen, commonHeaderLen+len(obj)), obj...)
}

// OpenResult is the peer's echoed OPEN fields.
type OpenResult struct {
	Keepalive byte
	Deadtimer byte
	SessionID byte
}

func decodeOpenMessage(objs []pcepObject) (*OpenResult, error) {
	obj, ok := findObject(objs, ClassOpen)
	if !ok {
		return nil, ecode.New(ecode.UnexpectedMsg, "pcep: OPEN message missing OPEN object")
	}
	if len(obj.Value) < 4 {
		return nil, ecode.New(ecode.Malformed, "pcep: OPEN object shorter than 4 bytes")
	}
	return &OpenResult{Keepalive: obj.Value[1], Deadtimer: obj.Value[2], SessionID: obj.Value[3]}, nil
}

func encodeKeepaliveMessage() []byte {
	return encodeCommonHeader(MsgKeepalive, commonHeaderLen)
}
