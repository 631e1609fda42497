/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package smb2 speaks just enough SMB2/CIFS to negotiate a dialect,
// authenticate with NTLMv2, connect a share, and perform one directory
// listing, file read, file write, or stat before tearing the session
// back down. It is not a filesystem client: every operation runs once
// per HTTP probe and the socket is thrown away afterward.
package smb2

import (
	"encoding/binary"

	"github.com/rossgg/portofcall/internal/engine/framing"
)

// Commands (SMB2 header Command field).
const (
	CmdNegotiate      uint16 = 0x0000
	CmdSessionSetup   uint16 = 0x0001
	CmdLogoff         uint16 = 0x0002
	CmdTreeConnect    uint16 = 0x0003
	CmdTreeDisconnect uint16 = 0x0004
	CmdCreate         uint16 = 0x0005
	CmdClose          uint16 = 0x0006
	CmdRead           uint16 = 0x0008
	CmdWrite          uint16 = 0x0009
	CmdQueryDirectory uint16 = 0x000e
)

// NTStatus values this codec distinguishes explicitly; all others are
// surfaced verbatim as the wire code of a PROTOCOL_ERROR.
const (
	StatusSuccess                 uint32 = 0x00000000
	StatusMoreProcessingRequired  uint32 = 0xC0000016
	StatusLogonFailure            uint32 = 0xC000006D
	StatusFileIsADirectory        uint32 = 0xC00000BA
	StatusNoSuchFile              uint32 = 0xC000000F
)

// Dialects offered by NEGOTIATE, in the fixed order this codec always
// sends them.
var OfferedDialects = []uint16{0x0202, 0x0210, 0x0300, 0x0302, 0x0311}

// ClientGUID is the fixed 16-byte client identity string every
// negotiated session presents; it never varies between probes.
var ClientGUID = []byte("OrtCallSMB2Clien")

const (
	securityModeSigningEnabled uint16 = 0x0001
	capabilitiesOffered        uint32 = 0x7F
)

// Server capability bits returned by NEGOTIATE, decoded for the caller.
const (
	CapDFS               uint32 = 0x00000001
	CapLeasing           uint32 = 0x00000002
	CapLargeMTU          uint32 = 0x00000004
	CapMultiChannel      uint32 = 0x00000008
	CapPersistentHandles uint32 = 0x00000010
	CapDirLeasing        uint32 = 0x00000020
	CapEncryption        uint32 = 0x00000040
)

// File attribute bits (FileAttributes in CREATE responses).
const (
	AttrReadOnly  uint32 = 0x00000001
	AttrHidden    uint32 = 0x00000002
	AttrSystem    uint32 = 0x00000004
	AttrDirectory uint32 = 0x00000010
	AttrArchive   uint32 = 0x00000020
)

const headerLen = 64

// header is the fixed 64-byte SMB2 header, signing disabled throughout
// (Signature is always 16 zero bytes).
type header struct {
	Command        uint16
	CreditCharge   uint16
	Status         uint32
	CreditRequest  uint16
	Flags          uint32
	MessageID      uint64
	TreeID         uint32
	SessionID      uint64
}

func encodeHeader(h header) []byte {
	b := make([]byte, headerLen)
	copy(b[0:4], []byte{0xFE, 'S', 'M', 'B'})
	binary.LittleEndian.PutUint16(b[4:6], 64) // StructureSize
	binary.LittleEndian.PutUint16(b[6:8], h.CreditCharge)
	binary.LittleEndian.PutUint32(b[8:12], h.Status)
	binary.LittleEndian.PutUint16(b[12:14], h.Command)
	binary.LittleEndian.PutUint16(b[14:16], h.CreditRequest)
	binary.LittleEndian.PutUint32(b[16:20], h.Flags)
	binary.LittleEndian.PutUint32(b[20:24], 0) // NextCommand
	binary.LittleEndian.PutUint64(b[24:32], h.MessageID)
	binary.LittleEndian.PutUint32(b[32:36], 0) // Reserved/ProcessId
	binary.LittleEndian.PutUint32(b[36:40], h.TreeID)
	binary.LittleEndian.PutUint64(b[40:48], h.SessionID)
	// b[48:64] Signature stays zero.
	return b
}

// wrapPDU prefixes a full header+body PDU with its NetBIOS session
// service length header.
func wrapPDU(pdu []byte) []byte {
	return append(framing.EncodeSMB2NetBIOSHeader(len(pdu)), pdu...)
}

func decodeHeader(b []byte) (header, []byte, error) {
	if len(b) < headerLen {
		return header{}, nil, errShortMessage()
	}
	h := header{
		CreditCharge:  binary.LittleEndian.Uint16(b[6:8]),
		Status:        binary.LittleEndian.Uint32(b[8:12]),
		Command:       binary.LittleEndian.Uint16(b[12:14]),
		CreditRequest: binary.LittleEndian.Uint16(b[14:16]),
		Flags:         binary.LittleEndian.Uint32(b[16:20]),
		MessageID:     binary.LittleEndian.Uint64(b[24:32]),
		TreeID:        binary.LittleEndian.Uint32(b[36:40]),
		SessionID:     binary.LittleEndian.Uint64(b[40:48]),
	}
	return h, b[headerLen:], nil
}
