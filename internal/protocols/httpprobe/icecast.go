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

	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const icecastResponseCap = 256 * 1024

// IcecastParams is the `/api/icecast/adminstats` request.
type IcecastParams struct {
	Target   transport.Target
	Username string
	Password string
}

// IcecastResult reports the status code and raw body; Icecast's admin
// stats XML shape isn't worth a dedicated struct for a probe endpoint.
type IcecastResult struct {
	StatusCode int
	Body       string
}

// AdminStats fetches GET /admin/stats.xml with HTTP Basic Auth.
func AdminStats(ctx context.Context, p IcecastParams) (*IcecastResult, error) {
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*IcecastResult, error) {
		hostHeader := fmt.Sprintf("%s:%d", p.Target.Host, p.Target.Port)
		headers := [][2]string{{"Authorization", basicAuthHeader(p.Username, p.Password)}}
		req := buildRequest("GET", "/admin/stats.xml", hostHeader, headers, nil)
		resp, err := readResponse(tr, req, icecastResponseCap)
		if err != nil {
			return nil, err
		}
		return &IcecastResult{StatusCode: resp.StatusCode, Body: string(resp.Body)}, nil
	})
}
