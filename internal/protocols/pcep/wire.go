/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package pcep speaks just enough PCEP (RFC 5440) to open a session and
// run a single path computation request.
package pcep

import (
	"encoding/binary"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

const pcepVersion = 1
const commonHeaderLen = 4
const objectHeaderLen = 4

// Message types.
const (
	MsgOpen      byte = 1
	MsgKeepalive byte = 2
	MsgPCReq     byte = 3
	MsgPCRep     byte = 4
	MsgError     byte = 6
	MsgClose     byte = 7
)

// Object classes.
const (
	ClassOpen      byte = 1
	ClassRP        byte = 2
	ClassNoPath    byte = 3
	ClassEndpoints byte = 4
	ClassBandwidth byte = 5
	ClassMetric    byte = 6
	ClassERO       byte = 7
)

// encodeCommonHeader builds the 4-byte PCEP common header: 3-bit
// version, 5-bit flags (always 0), message type, and the 2-byte
// big-endian total message length (header included).
func encodeCommonHeader(msgType byte, totalLen int) []byte {
	out := make([]byte, commonHeaderLen)
	out[0] = pcepVersion << 5
	out[1] = msgType
	binary.BigEndian.PutUint16(out[2:4], uint16(totalLen))
	return out
}

func decodeCommonHeader(b []byte) (msgType byte, length int, err error) {
	if len(b) < commonHeaderLen {
		return 0, 0, ecode.New(ecode.Malformed, "pcep: common header shorter than 4 bytes")
	}
	return b[1], int(binary.BigEndian.Uint16(b[2:4])), nil
}

// pcepObject is one decoded object: class, object-type, P/I flags, and
// its value bytes (header stripped, padding stripped).
type pcepObject struct {
	Class byte
	OT    byte
	P     bool
	I     bool
	Value []byte
}

func encodeObject(class, ot byte, p, i bool, value []byte) []byte {
	objLen := objectHeaderLen + len(value)
	padded := paddedLen(objLen)
	out := make([]byte, padded)
	out[0] = class
	flags := ot << 4
	if p {
		flags |= 0x02
	}
	if i {
		flags |= 0x01
	}
	out[1] = flags
	binary.BigEndian.PutUint16(out[2:4], uint16(objLen))
	copy(out[4:], value)
	return out
}

func decodeObjects(b []byte) ([]pcepObject, error) {
	var out []pcepObject
	for len(b) > 0 {
		if len(b) < objectHeaderLen {
			return nil, ecode.New(ecode.Malformed, "pcep: truncated object header")
		}
		class := b[0]
		flags := b[1]
		length := int(binary.BigEndian.Uint16(b[2:4]))
		if length < objectHeaderLen || length > len(b) {
			return nil, ecode.New(ecode.Malformed, "pcep: object length out of range")
		}
		out = append(out, pcepObject{
			Class: class,
			OT:    flags >> 4,
			P:     flags&0x02 != 0,
			I:     flags&0x01 != 0,
			Value: append([]byte(nil), b[objectHeaderLen:length]...),
		})
		b = b[paddedLen(length):]
	}
	return out, nil
}

func findObject(objs []pcepObject, class byte) (pcepObject, bool) {
	for _, o := range objs {
		if o.Class == class {
			return o, true
		}
	}
	return pcepObject{}, false
}

func paddedLen(n int) int {
	if n%4 == 0 {
		return n
	}
	return n + (4 - n%4)
}
