/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package bcodec

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"

	"golang.org/x/crypto/md4"
)

// MD4 hashes b using MD4. Go's standard library has no MD4
// implementation, so this wraps golang.org/x/crypto/md4 (needed for the
// NTLMv2 NT hash) rather than hand-rolling the compression function.
func MD4(b []byte) []byte {
	h := md4.New()
	h.Write(b)
	return h.Sum(nil)
}

// MD5 hashes b using MD5.
func MD5(b ...[]byte) []byte {
	h := md5.New()
	for _, p := range b {
		h.Write(p)
	}
	return h.Sum(nil)
}

// HMACMD5 computes HMAC-MD5(key, msg...), used by NTLMv2 and RADSEC's
// Message-Authenticator attribute.
func HMACMD5(key []byte, msg ...[]byte) []byte {
	h := hmac.New(md5.New, key)
	for _, p := range msg {
		h.Write(p)
	}
	return h.Sum(nil)
}

// SHA1 hashes b using SHA-1.
func SHA1(b ...[]byte) []byte {
	h := sha1.New()
	for _, p := range b {
		h.Write(p)
	}
	return h.Sum(nil)
}

// SHA256 hashes b using SHA-256.
func SHA256(b ...[]byte) []byte {
	h := sha256.New()
	for _, p := range b {
		h.Write(p)
	}
	return h.Sum(nil)
}

// ConstantTimeEqual compares two byte slices in constant time, used
// whenever the engine validates a peer-supplied authenticator/response
// (RADIUS Response-Authenticator).
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
