/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package httpprobe

import (
	"context"

	"github.com/rossgg/portofcall/internal/engine/authcrypto"
	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/framing"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const digestNC = "00000001"

// requestWithOptionalDigest sends one request over tr; if the response
// is a 401/407 challenge and credentials were given, it opens a fresh
// connection (the original request carried `Connection: close`, so the
// server may already be tearing the first one down) and retransmits
// once with the Digest Authorization/Proxy-Authorization header set.
func requestWithOptionalDigest(ctx context.Context, target transport.Target, tr *transport.Transport, method, path, hostHeader, username, password string, headers [][2]string, body []byte, maxBody int) (*framing.HTTPResponse, bool, error) {
	req := buildRequest(method, path, hostHeader, headers, body)
	resp, err := readResponse(tr, req, maxBody)
	if err != nil {
		return nil, false, err
	}
	if !isAuthChallenge(resp.StatusCode) || username == "" {
		return resp, false, nil
	}
	challengeHeader, ok := resp.Get(challengeHeaderName(resp.StatusCode))
	if !ok {
		return resp, false, nil
	}
	ch, err := authcrypto.ParseChallengeHeader(challengeHeader)
	if err != nil {
		return nil, false, ecode.Wrap(ecode.Malformed, err)
	}
	cnonce, err := authcrypto.RandomCnonce()
	if err != nil {
		return nil, false, err
	}
	authHeader := authcrypto.BuildAuthorizationHeader(ch, method, path, username, password, cnonce, digestNC)
	retryHeaders := append(append([][2]string{}, headers...), [2]string{authorizationHeaderName(resp.StatusCode), authHeader})
	retryReq := buildRequest(method, path, hostHeader, retryHeaders, body)

	retryTr, err := transport.Open(ctx, target)
	if err != nil {
		return nil, false, err
	}
	defer retryTr.Close()
	resp2, err := readResponse(retryTr, retryReq, maxBody)
	if err != nil {
		return nil, false, err
	}
	return resp2, true, nil
}
