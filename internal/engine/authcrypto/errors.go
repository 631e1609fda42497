/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package authcrypto

import "github.com/rossgg/portofcall/internal/engine/ecode"

func errMalformed(msg string) *ecode.Error {
	return ecode.New(ecode.Malformed, msg)
}
