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

// NegotiateResult is what callers learn from a successful NEGOTIATE.
type NegotiateResult struct {
	Dialect         uint16
	ServerGUID      []byte
	Capabilities    uint32
	MaxTransactSize uint32
	MaxReadSize     uint32
	MaxWriteSize    uint32
	ServerTimeUTC   time.Time
}

// BuildNegotiateRequest builds the SMB2 PDU for the fixed dialect/
// capability set this engine offers.
func BuildNegotiateRequest() []byte {
	body := make([]byte, 36+2*len(OfferedDialects))
	binary.LittleEndian.PutUint16(body[0:2], 36)
	binary.LittleEndian.PutUint16(body[2:4], uint16(len(OfferedDialects)))
	binary.LittleEndian.PutUint16(body[4:6], securityModeSigningEnabled)
	binary.LittleEndian.PutUint32(body[8:12], capabilitiesOffered)
	copy(body[12:28], ClientGUID)
	for i, d := range OfferedDialects {
		binary.LittleEndian.PutUint16(body[36+2*i:38+2*i], d)
	}

	hdr := encodeHeader(header{Command: CmdNegotiate, MessageID: 0, CreditRequest: 1})
	pdu := append(hdr, body...)
	return wrapPDU(pdu)
}

// ParseNegotiateResponse decodes a full PDU (header + body) returned for
// NEGOTIATE.
func ParseNegotiateResponse(pdu []byte) (*NegotiateResult, error) {
	h, body, err := decodeHeader(pdu)
	if err != nil {
		return nil, err
	}
	if h.Status != StatusSuccess {
		return nil, statusError(h.Status, "negotiate failed")
	}
	if len(body) < 64 {
		return nil, errShortMessage()
	}
	res := &NegotiateResult{
		Dialect:         binary.LittleEndian.Uint16(body[4:6]),
		ServerGUID:      append([]byte{}, body[8:24]...),
		Capabilities:    binary.LittleEndian.Uint32(body[24:28]),
		MaxTransactSize: binary.LittleEndian.Uint32(body[28:32]),
		MaxReadSize:     binary.LittleEndian.Uint32(body[32:36]),
		MaxWriteSize:    binary.LittleEndian.Uint32(body[36:40]),
	}
	ft := binary.LittleEndian.Uint64(body[40:48])
	sec, nsec := bcodec.UnixFromFILETIME(ft)
	res.ServerTimeUTC = time.Unix(sec, nsec).UTC()
	return res, nil
}
