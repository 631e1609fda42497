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

const opResponseCap = 1024 * 1024

// encodeOpRequest builds `len(i32 LE) | opCode(i16 LE) | requestId(i64
// LE) | body`.
func encodeOpRequest(opCode int16, requestID int64, body []byte) []byte {
	out := make([]byte, 4+2+8+len(body))
	binary.LittleEndian.PutUint32(out[0:4], uint32(2+8+len(body)))
	binary.LittleEndian.PutUint16(out[4:6], uint16(opCode))
	binary.LittleEndian.PutUint64(out[6:14], uint64(requestID))
	copy(out[14:], body)
	return out
}

// opResponse is a decoded `len | requestId | status | body` frame.
type opResponse struct {
	RequestID int64
	Status    int32
	Body      []byte
}

func readOpResponse(tr *transport.Transport) (*opResponse, error) {
	r := tr.NewCappedReader(opResponseCap)
	frame, err := r.ReadU32LELengthPrefixed(opResponseCap)
	if err != nil {
		return nil, err
	}
	if len(frame) < 12 {
		return nil, ecode.New(ecode.ShortRead, "ignite: operation response shorter than header")
	}
	return &opResponse{
		RequestID: int64(binary.LittleEndian.Uint64(frame[0:8])),
		Status:    int32(binary.LittleEndian.Uint32(frame[8:12])),
		Body:      frame[12:],
	}, nil
}
