/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package sip

import (
	"strconv"
	"strings"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/framing"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const responseCap = 64 * 1024

// readFinalResponse reads one SIP response off tr, discarding any
// leading 1xx provisionals: "the reader keeps
// accumulating until a final response arrives or the deadline fires."
func readFinalResponse(tr *transport.Transport) (*Response, error) {
	r := tr.NewCappedReader(responseCap)
	for {
		resp, err := readOneMessage(r)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 {
			return resp, nil
		}
	}
}

func readOneMessage(r *framing.Reader) (*Response, error) {
	headerBlob, err := r.ReadUntil([]byte("\r\n\r\n"))
	if err != nil {
		return nil, err
	}
	resp, err := parseStatusAndHeaders(string(headerBlob))
	if err != nil {
		return nil, err
	}

	if cl := headerValues(resp.Headers, "content-length"); len(cl) > 0 {
		n, convErr := strconv.Atoi(strings.TrimSpace(cl[0]))
		if convErr == nil && n > 0 {
			b, err := r.ReadExactly(n)
			if err != nil {
				return nil, err
			}
			resp.Body = string(b)
		}
	}
	return resp, nil
}

// parseStatusAndHeaders parses "SIP/2.0 200 OK\r\nHeader: v\r\n...\r\n\r\n"
// (the trailing blank line, which the caller's delimiter leaves in
// place, is trimmed here).
func parseStatusAndHeaders(blob string) (*Response, error) {
	lines := strings.Split(strings.TrimSuffix(blob, "\r\n\r\n"), "\r\n")
	if len(lines) == 0 {
		return nil, ecode.New(ecode.Malformed, "sip: empty response")
	}
	statusParts := strings.SplitN(lines[0], " ", 3)
	if len(statusParts) < 2 || !strings.HasPrefix(statusParts[0], "SIP/2.0") {
		return nil, ecode.New(ecode.Malformed, "sip: missing SIP/2.0 status line")
	}
	code, err := strconv.Atoi(statusParts[1])
	if err != nil {
		return nil, ecode.New(ecode.Malformed, "sip: non-numeric status code")
	}
	reason := ``
	if len(statusParts) > 2 {
		reason = statusParts[2]
	}

	headers := map[string][]string{}
	for _, line := range lines[1:] {
		if line == `` {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(line[:idx]))
		val := strings.TrimSpace(line[idx+1:])
		headers[name] = append(headers[name], val)
	}
	return &Response{StatusCode: code, Reason: reason, Headers: headers}, nil
}
