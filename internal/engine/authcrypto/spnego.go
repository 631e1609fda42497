/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package authcrypto

import (
	"bytes"
)

// SPNEGO wrapping is hand-rolled DER rather than encoding/asn1: the
// gateway only ever emits two fixed shapes (an initial negTokenInit
// carrying one mechType and an NTLMSSP mechToken, and reads back a
// negTokenResp carrying a response token), so a general ASN.1 marshaller
// buys nothing and a reflection-based one can't guarantee the exact byte
// layout these two fixed messages need.

var spnegoOID = []byte{0x06, 0x06, 0x2b, 0x06, 0x01, 0x05, 0x05, 0x02} // 1.3.6.1.5.5.2
var ntlmsspOID = []byte{0x06, 0x0a, 0x2b, 0x06, 0x01, 0x04, 0x01, 0x82, 0x37, 0x02, 0x02, 0x0a} // 1.3.6.1.4.1.311.2.2.10

// derLen encodes a DER length in the minimal-octet form.
func derLen(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte(n & 0xff)}, b...)
		n >>= 8
	}
	return append([]byte{byte(0x80 | len(b))}, b...)
}

func derTLV(tag byte, body []byte) []byte {
	out := []byte{tag}
	out = append(out, derLen(len(body))...)
	return append(out, body...)
}

// WrapSPNEGOInit builds the GSS-API token carrying an SPNEGO
// NegTokenInit with a single NTLMSSP mechType and the given mechToken
// (the raw NTLM Type 1 message).
func WrapSPNEGOInit(mechToken []byte) []byte {
	mechTypes := derTLV(0xa0, derTLV(0x30, ntlmsspOID))
	tokenField := derTLV(0xa2, derTLV(0x04, mechToken))
	negTokenInit := derTLV(0x30, append(append([]byte{}, mechTypes...), tokenField...))
	inner := derTLV(0xa0, negTokenInit)

	gssBody := append(append([]byte{}, spnegoOID...), inner...)
	gssToken := derTLV(0x60, gssBody)
	return gssToken
}

// WrapSPNEGOResp builds the [1]-tagged NegTokenResp carrying only a
// responseToken field, the shape used for the second leg of an NTLM
// exchange (the AUTHENTICATE message).
func WrapSPNEGOResp(responseToken []byte) []byte {
	tokenField := derTLV(0xa2, derTLV(0x04, responseToken))
	negTokenResp := derTLV(0x30, tokenField)
	return derTLV(0xa1, negTokenResp)
}

// UnwrapSPNEGOResp extracts the responseToken octet string (the raw NTLM
// message) from a negTokenResp/negTokenTarg, or the bare NTLMSSP token if
// the peer skipped SPNEGO wrapping entirely (seen from some SMB2
// implementations' final AUTHENTICATE exchange).
func UnwrapSPNEGOResp(b []byte) ([]byte, error) {
	if bytes.HasPrefix(b, []byte("NTLMSSP\x00")) {
		return b, nil
	}
	if len(b) < 2 {
		return nil, errMalformed("spnego: token too short")
	}
	// Look for the context-specific [2] responseToken field, tag 0xa2,
	// inside the outer negTokenResp SEQUENCE (tag 0x30 or an APPLICATION
	// wrapper tag 0x60 for the initial exchange).
	idx := bytes.Index(b, []byte{0xa2})
	if idx < 0 {
		idx = bytes.IndexByte(b, 0xa1) // some peers reuse NegTokenInit shape
	}
	if idx < 0 || idx+1 >= len(b) {
		return nil, errMalformed("spnego: no response token field found")
	}
	rest := b[idx+1:]
	length, lenBytes, err := parseDERLen(rest)
	if err != nil {
		return nil, err
	}
	rest = rest[lenBytes:]
	if len(rest) < 1 || rest[0] != 0x04 {
		return nil, errMalformed("spnego: expected OCTET STRING in response token field")
	}
	rest = rest[1:]
	octLen, octLenBytes, err := parseDERLen(rest)
	if err != nil {
		return nil, err
	}
	rest = rest[octLenBytes:]
	if len(rest) < octLen {
		return nil, errMalformed("spnego: truncated response token")
	}
	_ = length
	return rest[:octLen], nil
}

func parseDERLen(b []byte) (int, int, error) {
	if len(b) == 0 {
		return 0, 0, errMalformed("spnego: truncated length")
	}
	if b[0] < 0x80 {
		return int(b[0]), 1, nil
	}
	n := int(b[0] & 0x7f)
	if n == 0 || len(b) < 1+n {
		return 0, 0, errMalformed("spnego: truncated long-form length")
	}
	v := 0
	for i := 0; i < n; i++ {
		v = v<<8 | int(b[1+i])
	}
	return v, 1 + n, nil
}
