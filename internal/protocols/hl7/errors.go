/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package hl7

import "github.com/rossgg/portofcall/internal/engine/ecode"

func errEmptyMessage() *ecode.Error {
	return ecode.New(ecode.Malformed, "hl7: empty message")
}

func errNotMSH() *ecode.Error {
	return ecode.New(ecode.UnexpectedMsg, "hl7: first segment is not MSH")
}
