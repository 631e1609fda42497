/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package authcrypto holds the shared credential/handshake math used by
// more than one protocol codec: NTLMv2 (SMB2), HTTP Digest (SIP and the
// HTTP-like probes), iSCSI CHAP, and RADIUS authenticator/attribute
// crypto. Every construction here is built from explicit
// byte-for-byte recipes, not from a generic auth library, because no
// library in the retrieval pack implements this exact subset of NTLMSSP.
package authcrypto

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"strings"

	"github.com/rossgg/portofcall/internal/engine/bcodec"
)

// NTLMWorkstation is the fixed client workstation name this engine
// supplies for every NTLM handshake it performs.
const NTLMWorkstation = "PORTOFCALL"

// ntlmNegotiateFlags is the fixed Type 1 flag set:
// UNICODE | REQUEST_TARGET | NTLM | EXTENDED_SESSIONSECURITY |
// TARGET_INFO | 128 | 56. KEY_EXCH (0x40000000) is not set.
const ntlmNegotiateFlags uint32 = 0xA0880205

// NTLMType1 builds the raw NTLMSSP Type 1 NEGOTIATE_MESSAGE, to be
// wrapped in a SPNEGO NegTokenInit by the caller (SMB2 session setup).
func NTLMType1(domain string) []byte {
	domainB := []byte(domain)
	wsB := []byte(NTLMWorkstation)

	buf := &bytes.Buffer{}
	buf.WriteString("NTLMSSP\x00")
	writeU32LE(buf, 1) // message type

	flags := ntlmNegotiateFlags
	if domain != `` {
		flags |= 0x00001000 // NTLMSSP_NEGOTIATE_OEM_DOMAIN_SUPPLIED
	}
	writeU32LE(buf, flags)

	// DomainNameFields + WorkstationFields, payload appended after the
	// fixed 32-byte header.
	const headerLen = 32
	domainOff := headerLen
	wsOff := domainOff + len(domainB)

	writeSecBufFields(buf, len(domainB), domainOff)
	writeSecBufFields(buf, len(wsB), wsOff)

	buf.Write(domainB)
	buf.Write(wsB)
	return buf.Bytes()
}

// NTLMType2 is the decoded Type 2 CHALLENGE_MESSAGE: server challenge and
// the raw TargetInfo AV_PAIR blob (passed through unmodified into the
// Type3 blob).
type NTLMType2 struct {
	ServerChallenge [8]byte
	TargetName      string
	TargetInfo      []byte // raw AV_PAIR sequence, including terminator
	Flags           uint32
}

// ParseNTLMType2 decodes a Type 2 challenge message body.
func ParseNTLMType2(b []byte) (*NTLMType2, error) {
	if len(b) < 32 || !bytes.HasPrefix(b, []byte("NTLMSSP\x00")) {
		return nil, errMalformed("ntlm: missing NTLMSSP signature")
	}
	if binary.LittleEndian.Uint32(b[8:12]) != 2 {
		return nil, errMalformed("ntlm: not a Type 2 message")
	}
	t2 := &NTLMType2{}
	targetLen := binary.LittleEndian.Uint16(b[12:14])
	targetOff := binary.LittleEndian.Uint32(b[16:20])
	t2.Flags = binary.LittleEndian.Uint32(b[20:24])
	copy(t2.ServerChallenge[:], b[24:32])

	if targetLen > 0 {
		if int(targetOff)+int(targetLen) > len(b) {
			return nil, errMalformed("ntlm: target name out of range")
		}
		name, err := bcodec.DecodeUTF16LE(b[targetOff : targetOff+uint32(targetLen)])
		if err != nil {
			return nil, errMalformed("ntlm: bad target name encoding")
		}
		t2.TargetName = name
	}

	if len(b) >= 48 {
		tiLen := binary.LittleEndian.Uint16(b[40:42])
		tiOff := binary.LittleEndian.Uint32(b[44:48])
		if tiLen > 0 && int(tiOff)+int(tiLen) <= len(b) {
			t2.TargetInfo = append([]byte{}, b[tiOff:tiOff+uint32(tiLen)]...)
		}
	}
	return t2, nil
}

// NTLMv2Response is the derived Type 3 AUTHENTICATE_MESSAGE payload
// fields.
type NTLMv2Response struct {
	NTResponse           []byte // NTProofStr || blob
	LMResponse           []byte // 24 zero bytes
	EncryptedSessionKey  []byte // 16 zero bytes
	SessionKey           []byte // NTLMv2Key, kept for callers that sign
}

// ComputeNTLMv2 derives the NTLMv2 response fields given credentials, the
// parsed Type 2 challenge, a client challenge (8 random bytes), and the
// current time. filetimeNow is the 100ns-tick FILETIME timestamp; pass a
// fixed value in tests to reproduce the RFC reference vectors.
func ComputeNTLMv2(username, password, domain string, challenge *NTLMType2, clientChallenge [8]byte, filetimeNow uint64) (*NTLMv2Response, error) {
	passU16, err := bcodec.EncodeUTF16LE(password)
	if err != nil {
		return nil, err
	}
	nt := bcodec.MD4(passU16)

	idU16, err := bcodec.EncodeUTF16LE(strings.ToUpper(username) + strings.ToUpper(domain+challenge.TargetName))
	if err != nil {
		return nil, err
	}
	ntlmv2Key := bcodec.HMACMD5(nt, idU16)

	blob := &bytes.Buffer{}
	blob.Write([]byte{0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	ftBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(ftBuf, filetimeNow)
	blob.Write(ftBuf)
	blob.Write(clientChallenge[:])
	blob.Write([]byte{0x00, 0x00, 0x00, 0x00})
	blob.Write(challenge.TargetInfo)
	blob.Write([]byte{0x00, 0x00, 0x00, 0x00})

	ntProof := bcodec.HMACMD5(ntlmv2Key, challenge.ServerChallenge[:], blob.Bytes())
	ntResponse := append(append([]byte{}, ntProof...), blob.Bytes()...)

	return &NTLMv2Response{
		NTResponse:          ntResponse,
		LMResponse:          make([]byte, 24),
		EncryptedSessionKey: make([]byte, 16),
		SessionKey:          ntlmv2Key,
	}, nil
}

// NTLMType3 builds the raw NTLMSSP Type 3 AUTHENTICATE_MESSAGE body for
// SMB2 session setup, carrying the computed NTLMv2 response.
func NTLMType3(domain, username string, resp *NTLMv2Response) []byte {
	domainB, _ := bcodec.EncodeUTF16LE(domain)
	userB, _ := bcodec.EncodeUTF16LE(username)
	wsB, _ := bcodec.EncodeUTF16LE(NTLMWorkstation)

	const headerLen = 64
	off := headerLen
	lmOff := off
	off += len(resp.LMResponse)
	ntOff := off
	off += len(resp.NTResponse)
	domainOff := off
	off += len(domainB)
	userOff := off
	off += len(userB)
	wsOff := off
	off += len(wsB)
	sessKeyOff := off
	off += len(resp.EncryptedSessionKey)

	buf := &bytes.Buffer{}
	buf.WriteString("NTLMSSP\x00")
	writeU32LE(buf, 3) // message type

	writeSecBufFields(buf, len(resp.LMResponse), lmOff)
	writeSecBufFields(buf, len(resp.NTResponse), ntOff)
	writeSecBufFields(buf, len(domainB), domainOff)
	writeSecBufFields(buf, len(userB), userOff)
	writeSecBufFields(buf, len(wsB), wsOff)
	writeSecBufFields(buf, len(resp.EncryptedSessionKey), sessKeyOff)

	writeU32LE(buf, ntlmNegotiateFlags)

	buf.Write(resp.LMResponse)
	buf.Write(resp.NTResponse)
	buf.Write(domainB)
	buf.Write(userB)
	buf.Write(wsB)
	buf.Write(resp.EncryptedSessionKey)
	return buf.Bytes()
}

// RandomClientChallenge returns 8 cryptographically random bytes, the
// sole entropy source for NTLM client challenges.
func RandomClientChallenge() ([8]byte, error) {
	var b [8]byte
	_, err := rand.Read(b[:])
	return b, err
}

func writeU32LE(buf *bytes.Buffer, v uint32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	buf.Write(b)
}

func writeSecBufFields(buf *bytes.Buffer, length, offset int) {
	writeU16LE(buf, uint16(length))
	writeU16LE(buf, uint16(length))
	writeU32LE(buf, uint32(offset))
}

func writeU16LE(buf *bytes.Buffer, v uint16) {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	buf.Write(b)
}
