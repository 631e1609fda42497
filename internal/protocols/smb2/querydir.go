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
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

const fileDirectoryInformationClass = 1
const queryDirectoryOutputBufferLength = 65536

// BuildQueryDirectoryRequest builds a QUERY_DIRECTORY PDU listing every
// entry matching pattern ("*" for all) on fid.
func BuildQueryDirectoryRequest(messageID, sessionID uint64, treeID uint32, fid FileID, pattern string) ([]byte, error) {
	patternU16, err := bcodec.EncodeUTF16LE(pattern)
	if err != nil {
		return nil, err
	}
	body := make([]byte, 32+len(patternU16))
	binary.LittleEndian.PutUint16(body[0:2], 33)
	body[2] = fileDirectoryInformationClass
	copy(body[8:24], fid[:])
	binary.LittleEndian.PutUint16(body[24:26], headerLen+32)
	binary.LittleEndian.PutUint16(body[26:28], uint16(len(patternU16)))
	binary.LittleEndian.PutUint32(body[28:32], queryDirectoryOutputBufferLength)
	copy(body[32:], patternU16)

	hdr := encodeHeader(header{Command: CmdQueryDirectory, MessageID: messageID, SessionID: sessionID, TreeID: treeID, CreditRequest: 1})
	return wrapPDU(append(hdr, body...)), nil
}

// DirEntry is one decoded FileDirectoryInformation record.
type DirEntry struct {
	Name          string
	IsDir         bool
	Size          uint64
	LastWriteTime time.Time
}

// ParseQueryDirectoryResponse decodes a QUERY_DIRECTORY PDU into a list
// of entries, filtering "." and "..".
func ParseQueryDirectoryResponse(pdu []byte) ([]DirEntry, error) {
	h, body, err := decodeHeader(pdu)
	if err != nil {
		return nil, err
	}
	if h.Status != StatusSuccess {
		return nil, statusError(h.Status, "query directory failed")
	}
	if len(body) < 8 {
		return nil, errShortMessage()
	}
	off := binary.LittleEndian.Uint16(body[2:4])
	length := binary.LittleEndian.Uint32(body[4:8])
	absOff := int(off) - headerLen
	if absOff < 0 || absOff+int(length) > len(body) {
		return nil, errShortMessage()
	}
	buf := body[absOff : absOff+int(length)]

	var entries []DirEntry
	for {
		if len(buf) < 64 {
			break
		}
		nextOffset := binary.LittleEndian.Uint32(buf[0:4])
		ft := binary.LittleEndian.Uint64(buf[24:32])
		endOfFile := binary.LittleEndian.Uint64(buf[40:48])
		fileAttrs := binary.LittleEndian.Uint32(buf[56:60])
		nameLen := binary.LittleEndian.Uint32(buf[60:64])
		if 64+int(nameLen) > len(buf) {
			return nil, ecode.New(ecode.Malformed, "smb2: directory entry name exceeds buffer")
		}
		name, err := bcodec.DecodeUTF16LE(buf[64 : 64+int(nameLen)])
		if err != nil {
			return nil, ecode.Wrap(ecode.Malformed, err)
		}
		if name != "." && name != ".." {
			sec, nsec := bcodec.UnixFromFILETIME(ft)
			entries = append(entries, DirEntry{
				Name:          name,
				IsDir:         fileAttrs&AttrDirectory != 0,
				Size:          endOfFile,
				LastWriteTime: timeUnixUTC(sec, nsec),
			})
		}
		if nextOffset == 0 {
			break
		}
		if int(nextOffset) >= len(buf) {
			break
		}
		buf = buf[nextOffset:]
	}
	return entries, nil
}
