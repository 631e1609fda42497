/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package ignite

import (
	"encoding/binary"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const (
	handshakeOpCode   byte  = 1
	thinClientType    byte  = 2
	protocolMajor     int16 = 1
	protocolMinor     int16 = 7
	protocolPatch     int16 = 0
	handshakeRespCap        = 64 * 1024
)

// buildHandshakeRequest is the 11-byte handshake request at protocol
// version 1.7.0: length(i32 LE)=7, opCode, major(i16
// LE), minor(i16 LE), patch(1), clientType(1).
func buildHandshakeRequest() []byte {
	out := make([]byte, 11)
	binary.LittleEndian.PutUint32(out[0:4], 7)
	out[4] = handshakeOpCode
	binary.LittleEndian.PutUint16(out[5:7], uint16(protocolMajor))
	binary.LittleEndian.PutUint16(out[7:9], uint16(protocolMinor))
	out[9] = byte(protocolPatch)
	out[10] = thinClientType
	return out
}

// HandshakeResult is the decoded handshake response.
type HandshakeResult struct {
	Success      bool
	NodeUUIDHi   uint64
	NodeUUIDLo   uint64
	ErrorCode    int32
	ErrorMessage string
}

func writeHandshake(tr *transport.Transport) error {
	return tr.Write(buildHandshakeRequest())
}

// readHandshakeResponse reads the length-prefixed handshake response:
// uint8 success flag, then (on success) a 16-byte node UUID as two
// little-endian uint64 halves and any remaining bytes as feature
// flags; on failure an i32 LE error code and a tagged string message.
func readHandshakeResponse(tr *transport.Transport) (*HandshakeResult, error) {
	r := tr.NewCappedReader(handshakeRespCap)
	body, err := r.ReadU32LELengthPrefixed(handshakeRespCap)
	if err != nil {
		return nil, err
	}
	if len(body) < 1 {
		return nil, ecode.New(ecode.ShortRead, "ignite: empty handshake response")
	}
	if body[0] == 0 {
		res := &HandshakeResult{Success: false}
		if len(body) >= 5 {
			res.ErrorCode = int32(binary.LittleEndian.Uint32(body[1:5]))
		}
		if len(body) > 5 {
			if val, _, err := decodeTaggedValue(body[5:]); err == nil {
				if s, ok := val.Value.(string); ok {
					res.ErrorMessage = s
				}
			}
		}
		return res, nil
	}
	res := &HandshakeResult{Success: true}
	if len(body) >= 17 {
		res.NodeUUIDHi = binary.LittleEndian.Uint64(body[1:9])
		res.NodeUUIDLo = binary.LittleEndian.Uint64(body[9:17])
	}
	return res, nil
}
