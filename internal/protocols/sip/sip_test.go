/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package sip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptionsShape(t *testing.T) {
	parts := newRequestParts()
	req := string(buildOptions("example.com", 5060, parts, ``))
	assert.Contains(t, req, "OPTIONS sip:example.com:5060 SIP/2.0\r\n")
	assert.Contains(t, req, "Call-ID: "+parts.callID)
	assert.Contains(t, req, "User-Agent: PortOfCall/1.0")
	assert.Contains(t, req, "Content-Length: 0\r\n\r\n")
}

func TestBuildOptionsIncludesAuthorization(t *testing.T) {
	parts := newRequestParts()
	req := string(buildOptions("example.com", 5060, parts, `Digest username="a"`))
	assert.Contains(t, req, `Authorization: Digest username="a"`)
}

func TestParseStatusAndHeadersScenarioFromSpec(t *testing.T) {
	raw := "SIP/2.0 200 OK\r\nAllow: INVITE, ACK, BYE, CANCEL, OPTIONS, REGISTER\r\n" +
		"Supported: replaces\r\nServer: Test 1.0\r\nContent-Length: 0\r\n\r\n"
	resp, err := parseStatusAndHeaders(raw)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.Reason)
	assert.Equal(t, []string{"INVITE", "ACK", "BYE", "CANCEL", "OPTIONS", "REGISTER"}, commaList(resp.Headers, "allow"))
	assert.Equal(t, []string{"replaces"}, commaList(resp.Headers, "supported"))
	assert.Equal(t, "Test 1.0", firstHeader(resp.Headers, "server"))
}

func TestParseStatusAndHeadersRejectsNonSIPStatusLine(t *testing.T) {
	_, err := parseStatusAndHeaders("HTTP/1.1 200 OK\r\n\r\n")
	assert.Error(t, err)
}

func TestParseChallengeExtractsFields(t *testing.T) {
	ch, err := parseChallenge(`Digest realm="sip.example.com", nonce="abc123", qop="auth", opaque="xyz"`)
	require.NoError(t, err)
	assert.Equal(t, "sip.example.com", ch.Realm)
	assert.Equal(t, "abc123", ch.Nonce)
	assert.Equal(t, "auth", ch.QOP)
	assert.Equal(t, "xyz", ch.Opaque)
	assert.Equal(t, "MD5", ch.Algorithm)
}

func TestParseChallengeIgnoresAuthInt(t *testing.T) {
	ch, err := parseChallenge(`Digest realm="r", nonce="n", qop="auth-int"`)
	require.NoError(t, err)
	assert.Empty(t, ch.QOP)
}

func TestParseChallengeRequiresNonce(t *testing.T) {
	_, err := parseChallenge(`Digest realm="r"`)
	assert.Error(t, err)
}
