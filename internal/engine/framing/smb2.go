/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package framing

import (
	"bytes"

	"github.com/rossgg/portofcall/internal/engine/bcodec"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// SMB2Magic is the 4-byte marker every SMB2 message body starts with.
var SMB2Magic = []byte{0xFE, 'S', 'M', 'B'}

// ReadSMB2Message reads the 4-byte NetBIOS session-service header (top
// byte must be zero, the remaining 3 bytes a big-endian length), then
// exactly that many bytes, and validates the SMB2 magic. maxLen bounds
// the NetBIOS length field (spec: 4KB cap for these headers at the
// accumulation-buffer level, larger for the PDU body itself via the
// caller's own cap on maxLen).
func (r *Reader) ReadSMB2Message(maxLen int) ([]byte, error) {
	hdr, err := r.ReadExactly(4)
	if err != nil {
		return nil, err
	}
	if hdr[0] != 0 {
		return nil, ecode.New(ecode.Malformed, "framing: SMB2 NetBIOS header top byte must be zero")
	}
	n, err := bcodec.U24BE(hdr[1:])
	if err != nil {
		return nil, err
	}
	if maxLen > 0 && int(n) > maxLen {
		return nil, ecode.New(ecode.LimitExceeded, "framing: SMB2 message exceeds cap")
	}
	body, err := r.ReadExactly(int(n))
	if err != nil {
		return nil, err
	}
	if len(body) < 4 || !bytes.Equal(body[:4], SMB2Magic) {
		return nil, ecode.New(ecode.Malformed, "framing: bad SMB2 magic")
	}
	return body, nil
}

// EncodeSMB2NetBIOSHeader builds the 4-byte NetBIOS length prefix for an
// outgoing SMB2 PDU body of the given length.
func EncodeSMB2NetBIOSHeader(bodyLen int) []byte {
	hdr := make([]byte, 4)
	bcodec.PutU24BE(hdr[1:], uint32(bodyLen))
	return hdr
}
