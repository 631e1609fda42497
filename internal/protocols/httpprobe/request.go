/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package httpprobe is the hand-built HTTP/1.1 client every endpoint
// that speaks plain HTTP over the common transport calls for:
// RabbitMQ Management, Vault, Icecast, JSON-RPC, and a generic
// Digest-retry endpoint, each constructing requests by hand rather
// than via net/http.
package httpprobe

import (
	"encoding/base64"
	"fmt"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/framing"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const UserAgent = "PortOfCall/1.0"

// buildRequest renders `METHOD path HTTP/1.1\r\nHost: ...\r\n...\r\n\r\n[body]`.
func buildRequest(method, path, hostHeader string, extraHeaders [][2]string, body []byte) []byte {
	req := fmt.Sprintf("%s %s HTTP/1.1\r\nHost: %s\r\nConnection: close\r\nUser-Agent: %s\r\n",
		method, path, hostHeader, UserAgent)
	for _, h := range extraHeaders {
		req += fmt.Sprintf("%s: %s\r\n", h[0], h[1])
	}
	if len(body) > 0 {
		req += fmt.Sprintf("Content-Length: %d\r\n", len(body))
	}
	req += "\r\n"
	return append([]byte(req), body...)
}

func basicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// readResponse writes req and reads one HTTP response capped at maxBody.
func readResponse(tr *transport.Transport, req []byte, maxBody int) (*framing.HTTPResponse, error) {
	if err := tr.Write(req); err != nil {
		return nil, err
	}
	r := tr.NewCappedReader(maxBody)
	return r.ReadHTTPResponse(maxBody)
}

func isAuthChallenge(statusCode int) bool {
	return statusCode == 401 || statusCode == 407
}

func challengeHeaderName(statusCode int) string {
	if statusCode == 407 {
		return "Proxy-Authenticate"
	}
	return "WWW-Authenticate"
}

func authorizationHeaderName(statusCode int) string {
	if statusCode == 407 {
		return "Proxy-Authorization"
	}
	return "Authorization"
}

func requireSuccess(resp *framing.HTTPResponse, context string) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ecode.Newf(ecode.ProtocolError, "%s: unexpected status %s", context, resp.StatusLine)
	}
	return nil
}
