/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package authcrypto

import "github.com/rossgg/portofcall/internal/engine/bcodec"

// EncryptUserPassword implements RFC 2865 §5.2's User-Password attribute
// encryption: the password is padded to a multiple of 16 bytes and
// XORed block-by-block against a running MD5(secret || prior-block)
// keystream seeded by the request authenticator.
func EncryptUserPassword(password, secret, requestAuthenticator []byte) []byte {
	padded := padTo16(password)
	out := make([]byte, len(padded))

	prev := requestAuthenticator
	for i := 0; i < len(padded); i += 16 {
		b := bcodec.MD5(secret, prev)
		block := padded[i : i+16]
		cipher := make([]byte, 16)
		for j := 0; j < 16; j++ {
			cipher[j] = block[j] ^ b[j]
		}
		copy(out[i:i+16], cipher)
		prev = cipher
	}
	return out
}

func padTo16(b []byte) []byte {
	n := len(b)
	if n == 0 {
		n = 16
	} else if n%16 != 0 {
		n += 16 - n%16
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ResponseAuthenticator computes RFC 2865 §3's Response Authenticator:
// MD5(Code + Identifier + Length + RequestAuthenticator + Attributes + Secret)
// over the full reply packet as received, with the 16 authenticator
// bytes set to the bytes actually sent in the request.
func ResponseAuthenticator(code byte, identifier byte, length uint16, requestAuthenticator, attributes, secret []byte) []byte {
	lenBytes := []byte{byte(length >> 8), byte(length)}
	return bcodec.MD5([]byte{code, identifier}, lenBytes, requestAuthenticator, attributes, secret)
}

// MessageAuthenticator computes the Message-Authenticator attribute
// value (RFC 3579 §3.2): HMAC-MD5 over the entire packet with the
// Message-Authenticator attribute's value field temporarily zeroed.
func MessageAuthenticator(packetWithZeroedAttr []byte, secret []byte) []byte {
	return bcodec.HMACMD5(secret, packetWithZeroedAttr)
}
