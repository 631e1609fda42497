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
	"time"

	"github.com/rossgg/portofcall/internal/engine/bcodec"
)

// Desired-access / create-disposition / create-options constants this
// codec needs.
const (
	AccessFileRead       uint32 = 0x00120089
	AccessFileWrite      uint32 = 0x40120116
	DispositionOpen      uint32 = 1
	DispositionOverwriteIf uint32 = 5
	OptionDirectoryFile  uint32 = 0x00000001
	OptionNonDirectoryFile uint32 = 0x00000040
	ShareAccessReadWriteDelete uint32 = 0x00000007
	ShareAccessRead      uint32 = 0x00000001
	ImpersonationImpersonation uint32 = 2
)

// FileID is the 16-byte (persistent, volatile) handle CREATE returns
// and every subsequent operation on that handle echoes back.
type FileID [16]byte

// BuildCreateRequest builds a CREATE PDU opening path (empty string
// opens the share root) with the given access/options.
func BuildCreateRequest(messageID, sessionID uint64, treeID uint32, path string, desiredAccess, fileAttributes, shareAccess, disposition, options uint32) ([]byte, error) {
	nameU16, err := bcodec.EncodeUTF16LE(path)
	if err != nil {
		return nil, err
	}
	body := make([]byte, 56+len(nameU16))
	binary.LittleEndian.PutUint16(body[0:2], 57)
	binary.LittleEndian.PutUint32(body[4:8], ImpersonationImpersonation)
	binary.LittleEndian.PutUint32(body[24:28], desiredAccess)
	binary.LittleEndian.PutUint32(body[28:32], fileAttributes)
	binary.LittleEndian.PutUint32(body[32:36], shareAccess)
	binary.LittleEndian.PutUint32(body[36:40], disposition)
	binary.LittleEndian.PutUint32(body[40:44], options)
	if len(nameU16) > 0 {
		binary.LittleEndian.PutUint16(body[44:46], headerLen+56)
		binary.LittleEndian.PutUint16(body[46:48], uint16(len(nameU16)))
		copy(body[56:], nameU16)
	}

	hdr := encodeHeader(header{Command: CmdCreate, MessageID: messageID, SessionID: sessionID, TreeID: treeID, CreditRequest: 1})
	return wrapPDU(append(hdr, body...)), nil
}

// CreateResult is the decoded outcome of a CREATE.
type CreateResult struct {
	Status         uint32
	FileID         FileID
	FileAttributes uint32
	EndOfFile      uint64
	LastWriteTime  time.Time
}

// ParseCreateResponse decodes a CREATE PDU. A non-success status is
// returned as a typed error only by the caller, since some callers
// (Stat's file/directory retry) need to inspect Status without raising.
func ParseCreateResponse(pdu []byte) (*CreateResult, error) {
	h, body, err := decodeHeader(pdu)
	if err != nil {
		return nil, err
	}
	res := &CreateResult{Status: h.Status}
	if h.Status != StatusSuccess {
		return res, nil
	}
	if len(body) < 80 {
		return nil, errShortMessage()
	}
	copy(res.FileID[:], body[64:80])
	res.FileAttributes = binary.LittleEndian.Uint32(body[56:60])
	res.EndOfFile = binary.LittleEndian.Uint64(body[48:56])
	ft := binary.LittleEndian.Uint64(body[24:32])
	sec, nsec := bcodec.UnixFromFILETIME(ft)
	res.LastWriteTime = timeUnixUTC(sec, nsec)
	return res, nil
}

func timeUnixUTC(sec, nsec int64) time.Time {
	return time.Unix(sec, nsec).UTC()
}

// BuildCloseRequest builds a CLOSE PDU for the given handle.
func BuildCloseRequest(messageID, sessionID uint64, treeID uint32, fid FileID) []byte {
	body := make([]byte, 24)
	binary.LittleEndian.PutUint16(body[0:2], 24)
	copy(body[8:24], fid[:])
	hdr := encodeHeader(header{Command: CmdClose, MessageID: messageID, SessionID: sessionID, TreeID: treeID, CreditRequest: 1})
	return wrapPDU(append(hdr, body...))
}
