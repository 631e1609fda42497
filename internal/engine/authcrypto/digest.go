/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package authcrypto

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/rossgg/portofcall/internal/engine/bcodec"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// DigestChallenge is the set of fields a WWW-Authenticate: Digest or a
// SIP 401/407 challenge carries, enough to compute RFC 2617 / RFC 3261
// digest response.
type DigestChallenge struct {
	Realm     string
	Nonce     string
	Opaque    string
	QOP       string // "auth" or empty
	Algorithm string // "MD5" (default) or "MD5-sess"
}

// DigestResponse computes the response= value for the given method, URI
// and credentials. cnonce and nc are only meaningful when QOP is "auth".
func DigestResponse(ch DigestChallenge, method, uri, username, password, cnonce, nc string) string {
	ha1 := md5Hex(username + ":" + ch.Realm + ":" + password)
	if ch.Algorithm == "MD5-sess" {
		ha1 = md5Hex(ha1 + ":" + ch.Nonce + ":" + cnonce)
	}
	ha2 := md5Hex(method + ":" + uri)

	if ch.QOP == "auth" {
		return md5Hex(fmt.Sprintf("%s:%s:%s:%s:%s:%s", ha1, ch.Nonce, nc, cnonce, ch.QOP, ha2))
	}
	return md5Hex(ha1 + ":" + ch.Nonce + ":" + ha2)
}

// BuildAuthorizationHeader renders the Authorization/Proxy-Authorization
// header value for an HTTP Digest response.
func BuildAuthorizationHeader(ch DigestChallenge, method, uri, username, password, cnonce, nc string) string {
	response := DigestResponse(ch, method, uri, username, password, cnonce, nc)
	h := fmt.Sprintf(`Digest username="%s", realm="%s", nonce="%s", uri="%s", response="%s"`,
		username, ch.Realm, ch.Nonce, uri, response)
	if ch.Opaque != `` {
		h += fmt.Sprintf(`, opaque="%s"`, ch.Opaque)
	}
	if ch.QOP == "auth" {
		h += fmt.Sprintf(`, qop=auth, nc=%s, cnonce="%s"`, nc, cnonce)
	}
	if ch.Algorithm != `` {
		h += fmt.Sprintf(`, algorithm=%s`, ch.Algorithm)
	}
	return h
}

func md5Hex(s string) string {
	return bcodec.HexEncode(bcodec.MD5([]byte(s)))
}

const cnonceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomCnonce generates the 8-character random alphanumeric cnonce
// calls for.
func RandomCnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return ``, ecode.Wrap(ecode.Internal, err)
	}
	out := make([]byte, 8)
	for i, v := range b {
		out[i] = cnonceAlphabet[int(v)%len(cnonceAlphabet)]
	}
	return string(out), nil
}

// ParseChallengeHeader extracts the Digest parameters from a
// WWW-Authenticate or Proxy-Authenticate header value (the "Digest "
// scheme prefix, if present, is trimmed). Shared by every protocol that
// retransmits with a Digest Authorization header (SIP, and the generic
// HTTP-probe family).
func ParseChallengeHeader(header string) (DigestChallenge, error) {
	header = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "Digest"))
	ch := DigestChallenge{Algorithm: "MD5"}
	for _, part := range splitDigestParams(header) {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.ToLower(kv[0])
		val := strings.Trim(kv[1], `"`)
		switch key {
		case "realm":
			ch.Realm = val
		case "nonce":
			ch.Nonce = val
		case "opaque":
			ch.Opaque = val
		case "algorithm":
			ch.Algorithm = val
		case "qop":
			// Accept auth; ignore auth-int.
			for _, q := range strings.Split(val, ",") {
				if strings.TrimSpace(q) == "auth" {
					ch.QOP = "auth"
				}
			}
		}
	}
	if ch.Nonce == `` {
		return ch, ecode.New(ecode.Malformed, "authcrypto: challenge missing nonce")
	}
	return ch, nil
}

// splitDigestParams splits a comma-separated Digest parameter list
// while respecting commas inside quoted values.
func splitDigestParams(s string) []string {
	var parts []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ',' && !inQuotes:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
