/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package smb2

import (
	"encoding/binary"
	"fmt"

	"github.com/rossgg/portofcall/internal/engine/bcodec"
)

// BuildTreeConnectRequest builds a TREE_CONNECT PDU for `\\host\share`.
func BuildTreeConnectRequest(messageID, sessionID uint64, host, share string) ([]byte, error) {
	unc := fmt.Sprintf(`\\%s\%s`, host, share)
	pathU16, err := bcodec.EncodeUTF16LE(unc)
	if err != nil {
		return nil, err
	}
	body := make([]byte, 8+len(pathU16))
	binary.LittleEndian.PutUint16(body[0:2], 9)
	binary.LittleEndian.PutUint16(body[4:6], headerLen+8)
	binary.LittleEndian.PutUint16(body[6:8], uint16(len(pathU16)))
	copy(body[8:], pathU16)

	hdr := encodeHeader(header{Command: CmdTreeConnect, MessageID: messageID, SessionID: sessionID, CreditRequest: 1})
	return wrapPDU(append(hdr, body...)), nil
}

// TreeConnectResult carries the fields a caller needs from a successful
// TREE_CONNECT.
type TreeConnectResult struct {
	TreeID         uint32
	ShareType      byte
	MaximalAccess  uint32
}

// ParseTreeConnectResponse decodes a TREE_CONNECT PDU.
func ParseTreeConnectResponse(pdu []byte) (*TreeConnectResult, error) {
	h, body, err := decodeHeader(pdu)
	if err != nil {
		return nil, err
	}
	if h.Status != StatusSuccess {
		return nil, statusError(h.Status, "tree connect failed")
	}
	if len(body) < 16 {
		return nil, errShortMessage()
	}
	return &TreeConnectResult{
		TreeID:        h.TreeID,
		ShareType:     body[2],
		MaximalAccess: binary.LittleEndian.Uint32(body[12:16]),
	}, nil
}

// BuildTreeDisconnectRequest builds the cleanup TREE_DISCONNECT PDU.
func BuildTreeDisconnectRequest(messageID uint64, sessionID uint64, treeID uint32) []byte {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint16(body[0:2], 4)
	hdr := encodeHeader(header{Command: CmdTreeDisconnect, MessageID: messageID, SessionID: sessionID, TreeID: treeID, CreditRequest: 1})
	return wrapPDU(append(hdr, body...))
}

// BuildLogoffRequest builds the cleanup LOGOFF PDU.
func BuildLogoffRequest(messageID uint64, sessionID uint64) []byte {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint16(body[0:2], 4)
	hdr := encodeHeader(header{Command: CmdLogoff, MessageID: messageID, SessionID: sessionID, CreditRequest: 1})
	return wrapPDU(append(hdr, body...))
}
