/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package hl7 sends one HL7 v2 message over MLLP and parses the ACK.
package hl7

import (
	"bytes"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const (
	startBlock = 0x0B
	endBlock   = 0x1C
	carriageRt = 0x0D
	responseCap = 256 * 1024
)

// wrapMLLP frames an HL7 message with the MLLP start/end block markers.
func wrapMLLP(msg []byte) []byte {
	out := make([]byte, 0, len(msg)+3)
	out = append(out, startBlock)
	out = append(out, msg...)
	out = append(out, endBlock, carriageRt)
	return out
}

// readMLLPResponse reads until the first 0x1C. If the peer closes
// without ever sending one, the entire accumulated buffer is treated as
// the response — some HL7 endpoints reply without proper MLLP framing,
// and the source silently accepts that.
func readMLLPResponse(tr *transport.Transport) ([]byte, error) {
	r := tr.NewCappedReader(responseCap)
	b, err := r.ReadUntil([]byte{endBlock})
	if err != nil {
		if ecode.Is(err, ecode.ShortRead) && len(r.Buffered()) > 0 {
			return trimFraming(r.Buffered()), nil
		}
		return nil, err
	}
	return trimFraming(b[:len(b)-1]), nil
}

// trimFraming strips a leading start-block byte, if present.
func trimFraming(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{startBlock})
}
