/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package iscsi speaks just enough of the iSCSI login and text phases
// to run SendTargets discovery or a CHAP-authenticated login, per spec
// §4.4.2. It never issues I/O PDUs and never sends a Logout — sessions
// end by closing the socket.
package iscsi

import (
	"github.com/rossgg/portofcall/internal/engine/bcodec"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

const bhsLen = 48

// Opcodes used by this codec.
const (
	OpLoginRequest  byte = 0x43
	OpLoginResponse byte = 0x23
	OpTextRequest   byte = 0x44
	OpTextResponse  byte = 0x24
)

// Login flags: T (transit) and C (continue) bits, plus CSG/NSG stage
// numbers packed into the low nibble.
const (
	flagTransit  byte = 0x80
	flagContinue byte = 0x40
)

// Login stages.
const (
	StageSecurityNegotiation byte = 0
	StageLoginOperational    byte = 1
	StageFullFeature         byte = 3
)

// fixedISID is the 6-byte Initiator Session ID this codec always sends.
var fixedISID = []byte{0x00, 0x02, 0x3d, 0x00, 0x00, 0x01}

// loginFlags packs T, CSG and NSG into the Login PDU's flags byte.
func loginFlags(transit bool, csg, nsg byte) byte {
	f := (csg << 2) | (nsg & 0x3)
	if transit {
		f |= flagTransit
	}
	return f
}

// bhsBuilder assembles a 48-byte Basic Header Segment.
type bhsBuilder struct {
	opcode           byte
	flags            byte
	dataSegmentLen   uint32
	isid             []byte // 6 bytes, Login only
	initiatorTaskTag uint32
	cmdSN            uint32
	expStatSN        uint32
}

func (b bhsBuilder) encode() []byte {
	out := make([]byte, bhsLen)
	out[0] = b.opcode
	out[1] = b.flags
	bcodec.PutU24BE(out[5:8], b.dataSegmentLen)
	if len(b.isid) == 6 {
		copy(out[8:14], b.isid)
	}
	bcodec.PutU32BE(out[16:20], b.initiatorTaskTag)
	bcodec.PutU32BE(out[24:28], b.cmdSN)
	bcodec.PutU32BE(out[28:32], b.expStatSN)
	return out
}

// loginResponseHeader is what callers need out of a Login Response BHS.
type loginResponseHeader struct {
	Transit      bool
	CSG, NSG     byte
	StatSN       uint32
	StatusClass  byte
	StatusDetail byte
}

func parseLoginResponseHeader(b []byte) (*loginResponseHeader, error) {
	if len(b) < bhsLen {
		return nil, ecode.New(ecode.Malformed, "iscsi: BHS shorter than 48 bytes")
	}
	if b[0] != OpLoginResponse {
		return nil, ecode.New(ecode.UnexpectedMsg, "iscsi: expected Login Response opcode")
	}
	flags := b[1]
	statSN, err := bcodec.U32BE(b[24:28])
	if err != nil {
		return nil, err
	}
	return &loginResponseHeader{
		Transit:      flags&flagTransit != 0,
		CSG:          (flags >> 2) & 0x3,
		NSG:          flags & 0x3,
		StatSN:       statSN,
		StatusClass:  b[36],
		StatusDetail: b[37],
	}, nil
}

func dataSegmentLength(b []byte) (uint32, error) {
	if len(b) < 8 {
		return 0, ecode.New(ecode.Malformed, "iscsi: BHS shorter than 8 bytes")
	}
	return bcodec.U24BE(b[5:8])
}

// paddedLen rounds n up to the next multiple of 4, per iSCSI's data
// segment padding rule.
func paddedLen(n int) int {
	if n%4 == 0 {
		return n
	}
	return n + (4 - n%4)
}
