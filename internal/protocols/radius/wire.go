/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package radius builds and parses RADIUS Access-Request/Access-Accept
// packets (plain RADIUS and RADSEC over TLS).
package radius

import (
	"encoding/binary"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// Packet codes.
const (
	CodeAccessRequest   byte = 1
	CodeAccessAccept    byte = 2
	CodeAccessReject    byte = 3
	CodeAccountingRequest byte = 4
	CodeAccountingResponse byte = 5
	CodeAccessChallenge byte = 11
)

// Attribute types.
const (
	AttrUserName            byte = 1
	AttrUserPassword        byte = 2
	AttrMessageAuthenticator byte = 80
)

var codeText = map[byte]string{
	CodeAccessRequest:      "Access-Request",
	CodeAccessAccept:       "Access-Accept",
	CodeAccessReject:       "Access-Reject",
	CodeAccountingRequest:  "Accounting-Request",
	CodeAccountingResponse: "Accounting-Response",
	CodeAccessChallenge:    "Access-Challenge",
}

// CodeText renders a RADIUS code byte as its documented name.
func CodeText(code byte) string {
	if t, ok := codeText[code]; ok {
		return t
	}
	return "Unknown"
}

const headerLen = 20

// attribute is one decoded Type/Length/Value triple.
type attribute struct {
	Type  byte
	Value []byte
}

func encodeAttr(typ byte, value []byte) []byte {
	out := make([]byte, 2+len(value))
	out[0] = typ
	out[1] = byte(2 + len(value))
	copy(out[2:], value)
	return out
}

func decodeAttrs(b []byte) ([]attribute, error) {
	var out []attribute
	for len(b) > 0 {
		if len(b) < 2 {
			return nil, ecode.New(ecode.Malformed, "radius: truncated attribute header")
		}
		length := int(b[1])
		if length < 2 || length > len(b) {
			return nil, ecode.New(ecode.Malformed, "radius: attribute length out of range")
		}
		out = append(out, attribute{Type: b[0], Value: append([]byte(nil), b[2:length]...)})
		b = b[length:]
	}
	return out, nil
}

func findAttr(attrs []attribute, typ byte) ([]byte, bool) {
	for _, a := range attrs {
		if a.Type == typ {
			return a.Value, true
		}
	}
	return nil, false
}

// packetHeader is the fixed Code/Identifier/Length/Authenticator prefix.
type packetHeader struct {
	Code          byte
	Identifier    byte
	Length        uint16
	Authenticator [16]byte
}

func encodeHeader(h packetHeader, bodyLen int) []byte {
	out := make([]byte, headerLen)
	out[0] = h.Code
	out[1] = h.Identifier
	binary.BigEndian.PutUint16(out[2:4], uint16(headerLen+bodyLen))
	copy(out[4:20], h.Authenticator[:])
	return out
}

func decodeHeader(b []byte) (packetHeader, []byte, error) {
	if len(b) < headerLen {
		return packetHeader{}, nil, ecode.New(ecode.Malformed, "radius: packet shorter than 20 bytes")
	}
	var h packetHeader
	h.Code = b[0]
	h.Identifier = b[1]
	h.Length = binary.BigEndian.Uint16(b[2:4])
	copy(h.Authenticator[:], b[4:20])
	return h, b[headerLen:], nil
}
