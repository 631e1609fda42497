/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package radius

import (
	"crypto/rand"

	"github.com/rossgg/portofcall/internal/engine/authcrypto"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// builtRequest is a built Access-Request packet plus the pieces needed
// to verify the eventual response.
type builtRequest struct {
	Bytes         []byte
	Identifier    byte
	Authenticator [16]byte
}

// buildAccessRequest assembles a full Access-Request:
// a random identifier and request authenticator, RFC 2865 §5.2
// User-Password encryption, and an RFC 3579 Message-Authenticator
// computed over the packet with attribute 80's value zeroed.
func buildAccessRequest(username, password, secret string) (*builtRequest, error) {
	var reqAuth [16]byte
	if _, err := rand.Read(reqAuth[:]); err != nil {
		return nil, ecode.Wrap(ecode.Internal, err)
	}
	var idBuf [1]byte
	if _, err := rand.Read(idBuf[:]); err != nil {
		return nil, ecode.Wrap(ecode.Internal, err)
	}
	identifier := idBuf[0]

	encryptedPass := authcrypto.EncryptUserPassword([]byte(password), []byte(secret), reqAuth[:])
	attrs := append(encodeAttr(AttrUserName, []byte(username)), encodeAttr(AttrUserPassword, encryptedPass)...)
	macAttrOffset := headerLen + len(attrs) + 2 // skip header and this attr's type+length bytes
	zeroMAC := make([]byte, 16)
	attrs = append(attrs, encodeAttr(AttrMessageAuthenticator, zeroMAC)...)

	header := encodeHeader(packetHeader{Code: CodeAccessRequest, Identifier: identifier, Authenticator: reqAuth}, len(attrs))
	packet := append(header, attrs...)

	mac := authcrypto.MessageAuthenticator(packet, []byte(secret))
	copy(packet[macAttrOffset:macAttrOffset+16], mac)

	return &builtRequest{Bytes: packet, Identifier: identifier, Authenticator: reqAuth}, nil
}
