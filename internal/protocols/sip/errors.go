/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package sip

import "github.com/rossgg/portofcall/internal/engine/ecode"

func authChallengeMissingHeader() *ecode.Error {
	return ecode.New(ecode.Malformed, "sip: 401/407 without a challenge header")
}
