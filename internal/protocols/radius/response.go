/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package radius

import (
	"github.com/rossgg/portofcall/internal/engine/authcrypto"
	"github.com/rossgg/portofcall/internal/engine/bcodec"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// AccessResult is the decoded, verified outcome of one Access-Request.
type AccessResult struct {
	Code       byte
	CodeText   string
	Identifier byte
}

// parseAndVerify decodes a reply packet and checks its Response
// Authenticator against the request authenticator and shared secret:
// replace the received bytes with the request authenticator, append
// the secret, MD5, compare.
func parseAndVerify(reply []byte, req *builtRequest, secret string) (*AccessResult, error) {
	h, body, err := decodeHeader(reply)
	if err != nil {
		return nil, err
	}
	if h.Identifier != req.Identifier {
		return nil, ecode.New(ecode.UnexpectedMsg, "radius: reply identifier does not match request")
	}

	expected := authcrypto.ResponseAuthenticator(h.Code, h.Identifier, h.Length, req.Authenticator[:], body, []byte(secret))
	if !bcodec.ConstantTimeEqual(expected, h.Authenticator[:]) {
		return nil, ecode.New(ecode.AuthFailVerify, "radius: response authenticator mismatch").WithWireCode(h.Code)
	}

	return &AccessResult{Code: h.Code, CodeText: CodeText(h.Code), Identifier: h.Identifier}, nil
}
