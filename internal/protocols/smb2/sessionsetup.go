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

	"github.com/rossgg/portofcall/internal/engine/authcrypto"
)

const sessionSetupReqStructSize = 25

// BuildSessionSetupRequest wraps securityBlob (an SPNEGO token) in a
// SESSION_SETUP request. sessionID is 0 for the first leg, the
// server-assigned SessionId for the second.
func BuildSessionSetupRequest(messageID uint64, sessionID uint64, securityBlob []byte) []byte {
	body := make([]byte, 24+len(securityBlob))
	binary.LittleEndian.PutUint16(body[0:2], sessionSetupReqStructSize)
	body[3] = byte(securityModeSigningEnabled) // SecurityMode byte
	binary.LittleEndian.PutUint32(body[4:8], capabilitiesOffered)
	binary.LittleEndian.PutUint16(body[12:14], headerLen+24)             // SecurityBufferOffset
	binary.LittleEndian.PutUint16(body[14:16], uint16(len(securityBlob))) // SecurityBufferLength
	copy(body[24:], securityBlob)

	hdr := encodeHeader(header{Command: CmdSessionSetup, MessageID: messageID, SessionID: sessionID, CreditRequest: 1})
	return wrapPDU(append(hdr, body...))
}

// SessionSetupResult is the decoded outcome of one SESSION_SETUP leg.
type SessionSetupResult struct {
	Status       uint32
	SessionID    uint64
	SessionFlags uint16
	SecurityBlob []byte
}

// ParseSessionSetupResponse decodes a SESSION_SETUP PDU. A
// STATUS_MORE_PROCESSING_REQUIRED status is not an error here — the
// caller inspects Status to decide whether another leg is needed.
func ParseSessionSetupResponse(pdu []byte) (*SessionSetupResult, error) {
	h, body, err := decodeHeader(pdu)
	if err != nil {
		return nil, err
	}
	res := &SessionSetupResult{Status: h.Status, SessionID: h.SessionID}
	if h.Status != StatusSuccess && h.Status != StatusMoreProcessingRequired {
		return res, nil
	}
	if len(body) < 8 {
		return nil, errShortMessage()
	}
	res.SessionFlags = binary.LittleEndian.Uint16(body[2:4])
	secOff := binary.LittleEndian.Uint16(body[4:6])
	secLen := binary.LittleEndian.Uint16(body[6:8])
	// secOff is relative to the start of the SMB2 header, body starts
	// headerLen bytes later within the PDU.
	absOff := int(secOff) - headerLen
	if absOff >= 0 && absOff+int(secLen) <= len(body) {
		res.SecurityBlob = append([]byte{}, body[absOff:absOff+int(secLen)]...)
	}
	return res, nil
}

// NTLMv2SessionSetup runs the two-legged NTLMv2 handshake using sender
// and reader callbacks supplied by the caller (kept free of transport
// details so it can be exercised with synthetic bytes in tests).
func NTLMv2SessionSetup(send func(pdu []byte) error, recv func() ([]byte, error), username, password, domain string, filetimeNow uint64) (*SessionSetupResult, error) {
	t1 := authcrypto.NTLMType1(domain)
	if err := send(BuildSessionSetupRequest(1, 0, authcrypto.WrapSPNEGOInit(t1))); err != nil {
		return nil, err
	}
	pdu1, err := recv()
	if err != nil {
		return nil, err
	}
	leg1, err := ParseSessionSetupResponse(pdu1)
	if err != nil {
		return nil, err
	}
	if leg1.Status != StatusMoreProcessingRequired {
		return leg1, nil
	}

	challengeToken, err := authcrypto.UnwrapSPNEGOResp(leg1.SecurityBlob)
	if err != nil {
		return nil, err
	}
	t2, err := authcrypto.ParseNTLMType2(challengeToken)
	if err != nil {
		return nil, err
	}
	clientChallenge, err := authcrypto.RandomClientChallenge()
	if err != nil {
		return nil, err
	}
	resp, err := authcrypto.ComputeNTLMv2(username, password, domain, t2, clientChallenge, filetimeNow)
	if err != nil {
		return nil, err
	}
	t3 := authcrypto.NTLMType3(domain, username, resp)

	if err := send(BuildSessionSetupRequest(2, leg1.SessionID, authcrypto.WrapSPNEGOResp(t3))); err != nil {
		return nil, err
	}
	pdu2, err := recv()
	if err != nil {
		return nil, err
	}
	return ParseSessionSetupResponse(pdu2)
}
