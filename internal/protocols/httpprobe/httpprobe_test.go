/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package httpprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestShape(t *testing.T) {
	req := string(buildRequest("GET", "/api/overview", "localhost:15672", [][2]string{{"Authorization", "Basic abc"}}, nil))
	assert.Contains(t, req, "GET /api/overview HTTP/1.1\r\n")
	assert.Contains(t, req, "Host: localhost:15672\r\n")
	assert.Contains(t, req, "Connection: close\r\n")
	assert.Contains(t, req, "Authorization: Basic abc\r\n")
	assert.True(t, len(req) > 0 && req[len(req)-4:] == "\r\n\r\n")
}

func TestBuildRequestIncludesContentLengthWithBody(t *testing.T) {
	req := string(buildRequest("POST", "/v1/auth/jwt/login", "vault:8200", nil, []byte(`{"role":"x"}`)))
	assert.Contains(t, req, "Content-Length: 12\r\n")
	assert.Contains(t, req, `{"role":"x"}`)
}

func TestBasicAuthHeader(t *testing.T) {
	h := basicAuthHeader("user", "pass")
	assert.Equal(t, "Basic dXNlcjpwYXNz", h)
}

func TestIsAuthChallengeAndHeaderNames(t *testing.T) {
	assert.True(t, isAuthChallenge(401))
	assert.True(t, isAuthChallenge(407))
	assert.False(t, isAuthChallenge(200))
	assert.Equal(t, "Proxy-Authenticate", challengeHeaderName(407))
	assert.Equal(t, "WWW-Authenticate", challengeHeaderName(401))
	assert.Equal(t, "Proxy-Authorization", authorizationHeaderName(407))
	assert.Equal(t, "Authorization", authorizationHeaderName(401))
}

func TestMintBearerJWTProducesThreePartToken(t *testing.T) {
	token, err := mintBearerJWT(VaultParams{Role: "my-role", Subject: "probe", Audience: "vault", SigningKey: "shared-secret"})
	require.NoError(t, err)
	parts := 0
	for _, c := range token {
		if c == '.' {
			parts++
		}
	}
	assert.Equal(t, 2, parts)
}

func TestBatchRequestAssignsSequentialIDsIgnoringCallerInput(t *testing.T) {
	calls := []RPCCall{{Method: "a"}, {Method: "b"}, {Method: "c"}}
	reqs := make([]rpcRequest, len(calls))
	for i, c := range calls {
		reqs[i] = rpcRequest{JSONRPC: "2.0", ID: i + 1, Method: c.Method}
	}
	for i, r := range reqs {
		assert.Equal(t, i+1, r.ID)
	}
}
