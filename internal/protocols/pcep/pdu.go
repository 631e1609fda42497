/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package pcep

import "github.com/rossgg/portofcall/internal/engine/transport"

const responseCap = 64 * 1024

type message struct {
	Type    byte
	Objects []pcepObject
}

func readMessage(tr *transport.Transport) (*message, error) {
	r := tr.NewCappedReader(responseCap)
	hdr, err := r.ReadExactly(commonHeaderLen)
	if err != nil {
		return nil, err
	}
	msgType, total, err := decodeCommonHeader(hdr)
	if err != nil {
		return nil, err
	}
	var objs []pcepObject
	if total > commonHeaderLen {
		body, err := r.ReadExactly(total - commonHeaderLen)
		if err != nil {
			return nil, err
		}
		objs, err = decodeObjects(body)
		if err != nil {
			return nil, err
		}
	}
	return &message{Type: msgType, Objects: objs}, nil
}

// readMessageSkipping reads messages until one whose type is not in
// skip is found (used to tolerate interleaved Keepalives).
func readMessageSkipping(tr *transport.Transport, skip ...byte) (*message, error) {
	for {
		msg, err := readMessage(tr)
		if err != nil {
			return nil, err
		}
		skipped := false
		for _, s := range skip {
			if msg.Type == s {
				skipped = true
				break
			}
		}
		if !skipped {
			return msg, nil
		}
	}
}
