/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package sip sends a SIP OPTIONS request and parses the (possibly
// Digest-challenged) response, per spec §4.4.7.
package sip

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UserAgent is the fixed client identity this codec sends.
const UserAgent = "PortOfCall/1.0"

// requestParts are the caller-stable identifiers for one SIP
// transaction, generated fresh per probe.
type requestParts struct {
	callID string
	fromTag string
	branch string
	cseq int
}

func newRequestParts() requestParts {
	return requestParts{
		callID:  uuid.NewString(),
		fromTag: uuid.NewString()[:8],
		branch:  "z9hG4bK" + uuid.NewString()[:8],
		cseq:    1,
	}
}

func buildOptions(host string, port int, parts requestParts, authHeader string) []byte {
	uri := fmt.Sprintf("sip:%s:%d", host, port)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("OPTIONS %s SIP/2.0\r\n", uri))
	sb.WriteString(fmt.Sprintf("Via: SIP/2.0/TCP %s:%d;branch=%s\r\n", host, port, parts.branch))
	sb.WriteString("Max-Forwards: 70\r\n")
	sb.WriteString(fmt.Sprintf("From: <sip:probe@%s>;tag=%s\r\n", host, parts.fromTag))
	sb.WriteString(fmt.Sprintf("To: <%s>\r\n", uri))
	sb.WriteString(fmt.Sprintf("Call-ID: %s\r\n", parts.callID))
	sb.WriteString(fmt.Sprintf("CSeq: %d OPTIONS\r\n", parts.cseq))
	sb.WriteString(fmt.Sprintf("User-Agent: %s\r\n", UserAgent))
	if authHeader != `` {
		sb.WriteString("Authorization: " + authHeader + "\r\n")
	}
	sb.WriteString("Content-Length: 0\r\n\r\n")
	return []byte(sb.String())
}

// Response is a parsed SIP status-line-plus-headers message.
type Response struct {
	StatusCode int
	Reason     string
	Headers    map[string][]string
	Body       string
}

func headerValues(h map[string][]string, name string) []string {
	return h[strings.ToLower(name)]
}

// commaList splits a comma-separated header value into trimmed tokens.
func commaList(h map[string][]string, name string) []string {
	vals := headerValues(h, name)
	if len(vals) == 0 {
		return nil
	}
	var out []string
	for _, v := range vals {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if tok != `` {
				out = append(out, tok)
			}
		}
	}
	return out
}
