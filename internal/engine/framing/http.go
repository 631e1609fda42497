/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package framing

import (
	"strconv"
	"strings"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// HTTPResponse is the decoded shape the read-http-response framing
// reader produces: status line, case-insensitive header map preserving
// original key order, raw body, and a flag noting whether the body was
// fully received before the cap was hit.
type HTTPResponse struct {
	StatusLine string
	StatusCode int
	Headers    []HTTPHeader
	Body       []byte
	Truncated  bool
}

type HTTPHeader struct {
	Name  string
	Value string
}

// Get returns the first header value matching name, case-insensitively.
func (h *HTTPResponse) Get(name string) (string, bool) {
	for _, hh := range h.Headers {
		if strings.EqualFold(hh.Name, name) {
			return hh.Value, true
		}
	}
	return ``, false
}

// ReadHTTPResponse reads a status line, headers, and a body terminated by
// Content-Length, chunked Transfer-Encoding, or read-until-close.
// Redirects are never followed and Content-Encoding is never decoded
// — that is the caller's concern, not this reader's.
func (r *Reader) ReadHTTPResponse(maxBody int) (*HTTPResponse, error) {
	statusLine, err := r.ReadLine()
	if err != nil {
		return nil, err
	}
	resp := &HTTPResponse{StatusLine: statusLine}
	resp.StatusCode = parseStatusCode(statusLine)

	for {
		line, err := r.ReadLine()
		if err != nil {
			return nil, err
		}
		if line == `` {
			break
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, ecode.New(ecode.Malformed, "framing: malformed header line")
		}
		resp.Headers = append(resp.Headers, HTTPHeader{
			Name:  strings.TrimSpace(line[:idx]),
			Value: strings.TrimSpace(line[idx+1:]),
		})
	}

	if cl, ok := resp.Get("Content-Length"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(cl))
		if err != nil || n < 0 {
			return nil, ecode.New(ecode.Malformed, "framing: invalid Content-Length")
		}
		if maxBody > 0 && n > maxBody {
			n = maxBody
			resp.Truncated = true
		}
		if n > 0 {
			body, err := r.ReadExactly(n)
			if err != nil {
				return nil, err
			}
			resp.Body = body
		}
		return resp, nil
	}

	if te, ok := resp.Get("Transfer-Encoding"); ok && strings.EqualFold(strings.TrimSpace(te), "chunked") {
		body, truncated, err := r.readChunkedBody(maxBody)
		if err != nil {
			return nil, err
		}
		resp.Body = body
		resp.Truncated = truncated
		return resp, nil
	}

	// Neither Content-Length nor chunked: read until the peer closes.
	body, truncated := r.readUntilClose(maxBody)
	resp.Body = body
	resp.Truncated = truncated
	return resp, nil
}

func parseStatusCode(line string) int {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(parts[1])
	return n
}

// readChunkedBody decodes HTTP/1.1 chunked transfer encoding: a hex
// chunk-size line, that many bytes, a trailing CRLF, repeated until a
// zero-size chunk (optionally followed by trailer headers we discard) is
// seen.
func (r *Reader) readChunkedBody(maxBody int) ([]byte, bool, error) {
	var out []byte
	truncated := false
	for {
		sizeLine, err := r.ReadLine()
		if err != nil {
			return nil, false, err
		}
		sizeLine = strings.TrimSpace(strings.SplitN(sizeLine, ";", 2)[0])
		n, err := strconv.ParseInt(sizeLine, 16, 64)
		if err != nil || n < 0 {
			return nil, false, ecode.New(ecode.Malformed, "framing: bad chunked size line")
		}
		if n == 0 {
			// trailer headers, terminated by a blank line.
			for {
				line, err := r.ReadLine()
				if err != nil {
					return nil, false, err
				}
				if line == `` {
					break
				}
			}
			return out, truncated, nil
		}
		chunk, err := r.ReadExactly(int(n))
		if err != nil {
			return nil, false, err
		}
		if _, err := r.ReadExactly(2); err != nil { // trailing CRLF
			return nil, false, err
		}
		if maxBody > 0 && len(out)+len(chunk) > maxBody {
			remain := maxBody - len(out)
			if remain > 0 {
				out = append(out, chunk[:remain]...)
			}
			truncated = true
			continue
		}
		out = append(out, chunk...)
	}
}

// EncodeChunked is the inverse of readChunkedBody, used by tests
// asserting §8 invariant 7 (decodeChunked(encodeChunked(b)) == b) and by
// any protocol that needs to emit a chunked body itself.
func EncodeChunked(b []byte, chunkSize int) []byte {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	var out []byte
	for len(b) > 0 {
		n := chunkSize
		if n > len(b) {
			n = len(b)
		}
		out = append(out, []byte(strconv.FormatInt(int64(n), 16))...)
		out = append(out, '\r', '\n')
		out = append(out, b[:n]...)
		out = append(out, '\r', '\n')
		b = b[n:]
	}
	out = append(out, '0', '\r', '\n', '\r', '\n')
	return out
}

// readUntilClose drains whatever ReadLine/ReadExactly already
// accumulated in r.buf before pulling any more bytes from r.src — a
// TCP segment carrying headers and the start of a read-until-close
// body arrives together, and the body bytes land in r.buf the moment
// ReadHTTPResponse's header loop reads past them.
func (r *Reader) readUntilClose(maxBody int) ([]byte, bool) {
	out := append([]byte(nil), r.buf...)
	r.buf = nil
	truncated := false
	if maxBody > 0 && len(out) > maxBody {
		out = out[:maxBody]
		truncated = true
	}
	for !truncated && !r.eof {
		chunk := make([]byte, 4096)
		n, err := r.src.Read(chunk)
		if n > 0 {
			if maxBody > 0 && len(out)+n > maxBody {
				remain := maxBody - len(out)
				if remain > 0 {
					out = append(out, chunk[:remain]...)
				}
				truncated = true
			} else {
				out = append(out, chunk[:n]...)
			}
		}
		if err != nil {
			r.eof = true
		}
	}
	return out, truncated
}
