/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package radius

import (
	"encoding/binary"
	"testing"

	"github.com/rossgg/portofcall/internal/engine/authcrypto"
	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeAttrRoundTrip(t *testing.T) {
	attrs := append(encodeAttr(AttrUserName, []byte("alice")), encodeAttr(AttrUserPassword, []byte("xyz123456789abcd"))...)
	decoded, err := decodeAttrs(attrs)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	v, ok := findAttr(decoded, AttrUserName)
	require.True(t, ok)
	assert.Equal(t, "alice", string(v))

	v, ok = findAttr(decoded, AttrUserPassword)
	require.True(t, ok)
	assert.Equal(t, "xyz123456789abcd", string(v))
}

func TestBuildAccessRequestShapeAndMAC(t *testing.T) {
	req, err := buildAccessRequest("bob", "hunter2", "secret")
	require.NoError(t, err)
	assert.Equal(t, CodeAccessRequest, req.Bytes[0])
	assert.Equal(t, req.Identifier, req.Bytes[1])

	length := binary.BigEndian.Uint16(req.Bytes[2:4])
	assert.EqualValues(t, len(req.Bytes), length)

	h, body, err := decodeHeader(req.Bytes)
	require.NoError(t, err)
	attrs, err := decodeAttrs(body)
	require.NoError(t, err)

	mac, ok := findAttr(attrs, AttrMessageAuthenticator)
	require.True(t, ok)
	assert.Len(t, mac, 16)
	assert.Equal(t, h.Authenticator, req.Authenticator)
}

func TestParseAndVerifyAcceptsMatchingAuthenticator(t *testing.T) {
	req, err := buildAccessRequest("bob", "hunter2", "secret")
	require.NoError(t, err)

	attrs := encodeAttr(AttrUserName, []byte("bob"))
	replyHeader := encodeHeader(packetHeader{Code: CodeAccessAccept, Identifier: req.Identifier}, len(attrs))
	reply := append(replyHeader, attrs...)

	respAuth := authcrypto.ResponseAuthenticator(CodeAccessAccept, req.Identifier, uint16(len(reply)), req.Authenticator[:], attrs, []byte("secret"))
	copy(reply[4:20], respAuth)

	result, err := parseAndVerify(reply, req, "secret")
	require.NoError(t, err)
	assert.Equal(t, CodeAccessAccept, result.Code)
	assert.Equal(t, "Access-Accept", result.CodeText)
}

func TestParseAndVerifyRejectsTamperedAuthenticator(t *testing.T) {
	req, err := buildAccessRequest("bob", "hunter2", "secret")
	require.NoError(t, err)

	attrs := encodeAttr(AttrUserName, []byte("bob"))
	replyHeader := encodeHeader(packetHeader{Code: CodeAccessAccept, Identifier: req.Identifier}, len(attrs))
	reply := append(replyHeader, attrs...)

	respAuth := authcrypto.ResponseAuthenticator(CodeAccessAccept, req.Identifier, uint16(len(reply)), req.Authenticator[:], attrs, []byte("secret"))
	respAuth[0] ^= 0x01 // flip one bit
	copy(reply[4:20], respAuth)

	_, err = parseAndVerify(reply, req, "secret")
	require.Error(t, err)
	assert.True(t, ecode.Is(err, ecode.AuthFailVerify))
}

func TestCodeText(t *testing.T) {
	assert.Equal(t, "Access-Accept", CodeText(CodeAccessAccept))
	assert.Equal(t, "Access-Reject", CodeText(CodeAccessReject))
	assert.Equal(t, "Unknown", CodeText(99))
}
