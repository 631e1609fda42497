/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package smb2

import "encoding/binary"

// MaxReadChunk bounds any single READ this codec issues, per spec
// §4.4.1 (min(64KB, server MaxReadSize) is applied by the caller).
const MaxReadChunk = 64 * 1024

// BuildReadRequest builds a READ PDU for fid at the given offset/length.
func BuildReadRequest(messageID, sessionID uint64, treeID uint32, fid FileID, offset uint64, length uint32) []byte {
	body := make([]byte, 49)
	binary.LittleEndian.PutUint16(body[0:2], 49)
	binary.LittleEndian.PutUint32(body[4:8], length)
	binary.LittleEndian.PutUint64(body[8:16], offset)
	copy(body[16:32], fid[:])

	hdr := encodeHeader(header{Command: CmdRead, MessageID: messageID, SessionID: sessionID, TreeID: treeID, CreditRequest: 1})
	return wrapPDU(append(hdr, body...))
}

// ReadResult carries the decoded READ response.
type ReadResult struct {
	Status uint32
	Data   []byte
}

// ParseReadResponse decodes a READ PDU.
func ParseReadResponse(pdu []byte) (*ReadResult, error) {
	h, body, err := decodeHeader(pdu)
	if err != nil {
		return nil, err
	}
	res := &ReadResult{Status: h.Status}
	if h.Status != StatusSuccess {
		return res, nil
	}
	if len(body) < 16 {
		return nil, errShortMessage()
	}
	dataOffset := body[2]
	dataLength := binary.LittleEndian.Uint32(body[4:8])
	absOff := int(dataOffset) - headerLen
	if absOff < 0 || absOff+int(dataLength) > len(body) {
		return nil, errShortMessage()
	}
	res.Data = append([]byte{}, body[absOff:absOff+int(dataLength)]...)
	return res, nil
}

// BuildWriteRequest builds a WRITE PDU writing data at offset 0 to fid.
func BuildWriteRequest(messageID, sessionID uint64, treeID uint32, fid FileID, data []byte) []byte {
	body := make([]byte, 48+len(data))
	binary.LittleEndian.PutUint16(body[0:2], 49)
	binary.LittleEndian.PutUint16(body[2:4], headerLen+48)
	binary.LittleEndian.PutUint32(body[4:8], uint32(len(data)))
	copy(body[16:32], fid[:])
	copy(body[48:], data)

	hdr := encodeHeader(header{Command: CmdWrite, MessageID: messageID, SessionID: sessionID, TreeID: treeID, CreditRequest: 1})
	return wrapPDU(append(hdr, body...))
}

// WriteResult carries the decoded WRITE response.
type WriteResult struct {
	Status uint32
	Count  uint32
}

// ParseWriteResponse decodes a WRITE PDU.
func ParseWriteResponse(pdu []byte) (*WriteResult, error) {
	h, body, err := decodeHeader(pdu)
	if err != nil {
		return nil, err
	}
	res := &WriteResult{Status: h.Status}
	if h.Status != StatusSuccess {
		return res, nil
	}
	if len(body) < 8 {
		return nil, errShortMessage()
	}
	res.Count = binary.LittleEndian.Uint32(body[4:8])
	return res, nil
}
