/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package sip

import (
	"github.com/rossgg/portofcall/internal/engine/authcrypto"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

func randomCnonce() (string, error) {
	return authcrypto.RandomCnonce()
}

// parseChallenge extracts the Digest parameters from a WWW-Authenticate
// or Proxy-Authenticate header value.
func parseChallenge(header string) (authcrypto.DigestChallenge, error) {
	ch, err := authcrypto.ParseChallengeHeader(header)
	if err != nil {
		return ch, ecode.New(ecode.Malformed, "sip: challenge missing nonce")
	}
	return ch, nil
}
