/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package authcrypto

import (
	"testing"

	"github.com/rossgg/portofcall/internal/engine/bcodec"
	"github.com/stretchr/testify/require"
)

func TestNTLMType1HeaderShape(t *testing.T) {
	msg := NTLMType1("")
	require.True(t, len(msg) >= 32)
	require.Equal(t, "NTLMSSP\x00", string(msg[:8]))
}

func TestNTLMType2ParseAndType3Build(t *testing.T) {
	// Construct a minimal synthetic Type 2 message: signature, type,
	// target name fields (empty), flags, 8-byte challenge, then context
	// (8 zero bytes) and target info fields pointing at a trailing
	// 4-byte empty AV_PAIR terminator.
	body := make([]byte, 48)
	copy(body[0:8], []byte("NTLMSSP\x00"))
	bcodec.PutU32LE(body[8:12], 2)
	bcodec.PutU32LE(body[20:24], 0)
	challenge := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	copy(body[24:32], challenge[:])
	avTerminator := []byte{0, 0, 0, 0}
	bcodec.PutU16LE(body[40:42], uint16(len(avTerminator)))
	bcodec.PutU32LE(body[44:48], uint32(len(body)))
	body = append(body, avTerminator...)

	t2, err := ParseNTLMType2(body)
	require.NoError(t, err)
	require.Equal(t, challenge, t2.ServerChallenge)
	require.Equal(t, avTerminator, t2.TargetInfo)

	resp, err := ComputeNTLMv2("user", "password", "DOMAIN", t2, [8]byte{9, 9, 9, 9, 9, 9, 9, 9}, 0)
	require.NoError(t, err)
	require.Len(t, resp.NTResponse, 16+8+8+8+4+len(t2.TargetInfo)+4)

	t3 := NTLMType3("DOMAIN", "user", resp)
	require.Equal(t, "NTLMSSP\x00", string(t3[:8]))
}

func TestCHAPResponse(t *testing.T) {
	resp := CHAPResponse(1, []byte("secret"), []byte("challenge-bytes"))
	require.Len(t, resp, 16)
}

func TestDigestResponseRFC2617Example(t *testing.T) {
	ch := DigestChallenge{
		Realm:     "testrealm@host.com",
		Nonce:     "dcd98b7102dd2f0e8b11d0f600bfb0c093",
		Opaque:    "5ccc069c403ebaf9f0171e9517f40e41",
		QOP:       "auth",
		Algorithm: "",
	}
	resp := DigestResponse(ch, "GET", "/dir/index.html", "Mufasa", "Circle Of Life", "0a4f113b", "00000001")
	require.Equal(t, "6629fae49393a05397450978507c4ef1", resp)
}

func TestEncryptUserPasswordLength(t *testing.T) {
	secret := []byte("sharedsecret")
	auth := make([]byte, 16)
	out := EncryptUserPassword([]byte("password123"), secret, auth)
	require.Len(t, out, 16)
}

func TestSPNEGOWrapUnwrapRoundTrip(t *testing.T) {
	ntlm := NTLMType1("")
	wrapped := WrapSPNEGOInit(ntlm)
	require.Equal(t, byte(0x60), wrapped[0])
	unwrapped, err := UnwrapSPNEGOResp(wrapped)
	require.NoError(t, err)
	require.Equal(t, ntlm, unwrapped)
}

func TestParseChallengeHeaderExtractsFields(t *testing.T) {
	ch, err := ParseChallengeHeader(`Digest realm="sip.example.com", nonce="abc123", qop="auth", opaque="xyz"`)
	require.NoError(t, err)
	require.Equal(t, "sip.example.com", ch.Realm)
	require.Equal(t, "abc123", ch.Nonce)
	require.Equal(t, "auth", ch.QOP)
	require.Equal(t, "xyz", ch.Opaque)
}

func TestParseChallengeHeaderIgnoresAuthInt(t *testing.T) {
	ch, err := ParseChallengeHeader(`Digest realm="r", nonce="n", qop="auth-int"`)
	require.NoError(t, err)
	require.Empty(t, ch.QOP)
}

func TestParseChallengeHeaderRequiresNonce(t *testing.T) {
	_, err := ParseChallengeHeader(`Digest realm="r"`)
	require.Error(t, err)
}

func TestSplitDigestParamsRespectsQuotedCommas(t *testing.T) {
	parts := splitDigestParams(`realm="a, b", nonce="c"`)
	require.Len(t, parts, 2)
	require.Contains(t, parts[0], `realm="a, b"`)
}
