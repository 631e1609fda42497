/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package authcrypto

import "github.com/rossgg/portofcall/internal/engine/bcodec"

// CHAPResponse computes the iSCSI CHAP_R value (RFC 1994, as carried by
// the iSCSI login PDU's CHAP text keys): MD5(identifier ||
// secret || challenge).
func CHAPResponse(identifier byte, secret, challenge []byte) []byte {
	return bcodec.MD5([]byte{identifier}, secret, challenge)
}
