/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package sip

import (
	"context"
	"fmt"

	"github.com/rossgg/portofcall/internal/engine/authcrypto"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// Params is the `/api/sip/options` request. Username/Password are only
// used if the peer challenges with 401/407.
type Params struct {
	Target   transport.Target
	Username string
	Password string
}

// OptionsResult is the success payload.
type OptionsResult struct {
	StatusCode          int
	ReasonPhrase        string
	AllowedMethods      []string
	SupportedExtensions []string
	ServerAgent         string
	Authenticated       bool
	Raw                 string
}

// Options sends an OPTIONS request, follows a single Digest challenge if
// the peer issues one and credentials were supplied, and reports the
// final response's Allow/Supported/Server headers.
func Options(ctx context.Context, p Params) (*OptionsResult, error) {
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*OptionsResult, error) {
		parts := newRequestParts()
		if err := tr.Write(buildOptions(p.Target.Host, p.Target.Port, parts, ``)); err != nil {
			return nil, err
		}
		resp, err := readFinalResponse(tr)
		if err != nil {
			return nil, err
		}

		authenticated := false
		if (resp.StatusCode == 401 || resp.StatusCode == 407) && p.Username != `` {
			headerName := "www-authenticate"
			if resp.StatusCode == 407 {
				headerName = "proxy-authenticate"
			}
			vals := headerValues(resp.Headers, headerName)
			if len(vals) == 0 {
				return nil, authChallengeMissingHeader()
			}
			ch, err := parseChallenge(vals[0])
			if err != nil {
				return nil, err
			}
			cnonce, err := randomCnonce()
			if err != nil {
				return nil, err
			}
			uri := fmt.Sprintf("sip:%s:%d", p.Target.Host, p.Target.Port)
			authHeader := authcrypto.BuildAuthorizationHeader(ch, "OPTIONS", uri, p.Username, p.Password, cnonce, "00000001")

			parts.cseq++
			if err := tr.Write(buildOptions(p.Target.Host, p.Target.Port, parts, authHeader)); err != nil {
				return nil, err
			}
			resp, err = readFinalResponse(tr)
			if err != nil {
				return nil, err
			}
			authenticated = resp.StatusCode < 300
		}

		return &OptionsResult{
			StatusCode:          resp.StatusCode,
			ReasonPhrase:        resp.Reason,
			AllowedMethods:      commaList(resp.Headers, "allow"),
			SupportedExtensions: commaList(resp.Headers, "supported"),
			ServerAgent:         firstHeader(resp.Headers, "server"),
			Authenticated:       authenticated,
			Raw:                 resp.Body,
		}, nil
	})
}

func firstHeader(h map[string][]string, name string) string {
	vals := headerValues(h, name)
	if len(vals) == 0 {
		return ``
	}
	return vals[0]
}
