/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package textline implements the "read greeting, send command, read
// response" text-line protocol family of spec §4.4.7: SMTP, POP3, FTP
// and EPMD share one shape — a multi-line response terminated by a
// per-protocol rule — even though each protocol's terminator differs.
package textline

import (
	"strconv"
	"strings"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/framing"
)

const responseCap = 64 * 1024

// ReadSMTPResponse accumulates lines until one matches the SMTP
// terminator: three digits, a space (not a dash), then CRLF. Continuation
// lines use a dash in that position.
func ReadSMTPResponse(r *framing.Reader) (code int, lines []string, err error) {
	for {
		line, lerr := r.ReadLine()
		if lerr != nil {
			return 0, lines, lerr
		}
		if len(line) < 4 {
			return 0, lines, ecode.New(ecode.Malformed, "smtp: response line too short")
		}
		c, cerr := strconv.Atoi(line[:3])
		if cerr != nil {
			return 0, lines, ecode.New(ecode.Malformed, "smtp: non-numeric response code")
		}
		lines = append(lines, line)
		if line[3] == ' ' {
			return c, lines, nil
		}
		if line[3] != '-' {
			return 0, lines, ecode.New(ecode.Malformed, "smtp: malformed response separator")
		}
		code = c
	}
}

// ReadFTPResponse is the same three-digit/space-or-dash shape as SMTP.
func ReadFTPResponse(r *framing.Reader) (code int, lines []string, err error) {
	return ReadSMTPResponse(r)
}

// ReadPOP3Line reads a single +OK/-ERR status line.
func ReadPOP3Line(r *framing.Reader) (ok bool, text string, err error) {
	line, lerr := r.ReadLine()
	if lerr != nil {
		return false, ``, lerr
	}
	switch {
	case strings.HasPrefix(line, "+OK"):
		return true, strings.TrimSpace(strings.TrimPrefix(line, "+OK")), nil
	case strings.HasPrefix(line, "-ERR"):
		return false, strings.TrimSpace(strings.TrimPrefix(line, "-ERR")), nil
	default:
		return false, ``, ecode.New(ecode.Malformed, "pop3: response missing +OK/-ERR marker")
	}
}

// ReadPOP3Multiline reads a multiline POP3 response body terminated by
// "\r\n.\r\n", stripping the terminator and un-byte-stuffing leading
// dots ("..foo" -> ".foo").
func ReadPOP3Multiline(r *framing.Reader) ([]string, error) {
	raw, err := r.ReadUntil([]byte("\r\n.\r\n"))
	if err != nil {
		return nil, err
	}
	body := raw[:len(raw)-5]
	if len(body) == 0 {
		return nil, nil
	}
	lines := strings.Split(string(body), "\r\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "..") {
			lines[i] = l[1:]
		}
	}
	return lines, nil
}

func joinCRLF(cmd string) []byte {
	return []byte(cmd + "\r\n")
}
