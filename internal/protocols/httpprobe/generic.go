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
	"fmt"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const genericResponseCap = 512 * 1024

// GenericParams is the `/api/http/request` catch-all probe: a single
// HTTP/1.1 request that, when credentials are given and the server
// answers with a 401/407 challenge, is retried once with Digest auth.
// The first request carries no Authorization header; Basic Auth is
// never sent. Covers
// Thrift-over-HTTP and Ignite-probe-over-HTTP's plain request/response
// shape, since neither needs anything beyond this.
type GenericParams struct {
	Target      transport.Target
	Method      string
	Path        string
	Username    string
	Password    string
	ContentType string
	Body        []byte
}

// GenericResult is the raw response, left unparsed since this
// endpoint's payload shape varies by target protocol.
type GenericResult struct {
	StatusCode   int
	StatusLine   string
	Body         []byte
	UsedDigest   bool
}

// Request sends one hand-built HTTP request, retrying once with Digest
// auth if challenged.
func Request(ctx context.Context, p GenericParams) (*GenericResult, error) {
	method := p.Method
	if method == "" {
		method = "GET"
	}
	path := p.Path
	if path == "" {
		path = "/"
	}
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*GenericResult, error) {
		hostHeader := fmt.Sprintf("%s:%d", p.Target.Host, p.Target.Port)
		var headers [][2]string
		if p.ContentType != "" {
			headers = append(headers, [2]string{"Content-Type", p.ContentType})
		}
		resp, usedDigest, err := requestWithOptionalDigest(ctx, p.Target, tr, method, path, hostHeader, p.Username, p.Password, headers, p.Body, genericResponseCap)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, ecode.Newf(ecode.ProtocolError, "http: server error %s", resp.StatusLine)
		}
		return &GenericResult{StatusCode: resp.StatusCode, StatusLine: resp.StatusLine, Body: resp.Body, UsedDigest: usedDigest}, nil
	})
}
