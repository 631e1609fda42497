/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package textline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// SMTPParams is the `/api/smtp/probe` request. Helo is the EHLO
// identity the probe announces; it defaults to the fixed client
// identity when empty.
type SMTPParams struct {
	Target transport.Target
	Helo   string
}

// SMTPResult is the `/api/smtp/probe` success payload: the greeting and
// the parsed EHLO capability list (STARTTLS, AUTH mechanisms, SIZE, ...).
type SMTPResult struct {
	Greeting     string
	Capabilities []string
	Extensions   map[string]string
}

const defaultHelo = "portofcall.probe"

// SMTPProbe connects, reads the greeting, sends EHLO, and reports the
// peer's advertised extensions, per spec §4.4.7's SMTP terminator rule
// (three-digit code, space means final, dash means continuation).
func SMTPProbe(ctx context.Context, p SMTPParams) (*SMTPResult, error) {
	helo := p.Helo
	if helo == `` {
		helo = defaultHelo
	}
	return session.Run(ctx, p.Target, smtpCleanup, func(tr *transport.Transport) (*SMTPResult, error) {
		r := tr.NewCappedReader(responseCap)
		code, lines, err := ReadSMTPResponse(r)
		if err != nil {
			return nil, err
		}
		if code != 220 {
			return nil, ecode.New(ecode.ProtocolError, "smtp: unexpected greeting code "+fmt.Sprint(code)).WithWireCode(code)
		}
		greeting := strings.TrimSpace(strings.TrimPrefix(lines[0], lines[0][:4]))

		if err := tr.Write(joinCRLF("EHLO " + helo)); err != nil {
			return nil, err
		}
		code, lines, err = ReadSMTPResponse(r)
		if err != nil {
			return nil, err
		}
		if code != 250 {
			return nil, ecode.New(ecode.ProtocolError, "smtp: EHLO rejected").WithWireCode(code)
		}

		caps := make([]string, 0, len(lines)-1)
		ext := make(map[string]string)
		for _, l := range lines[1:] {
			body := strings.TrimSpace(l[4:])
			caps = append(caps, body)
			if sp := strings.IndexByte(body, ' '); sp > 0 {
				ext[strings.ToUpper(body[:sp])] = body[sp+1:]
			} else {
				ext[strings.ToUpper(body)] = ``
			}
		}
		return &SMTPResult{Greeting: greeting, Capabilities: caps, Extensions: ext}, nil
	})
}

// smtpCleanup sends QUIT best-effort, per spec §4.3's "QUIT, LOGOFF,
// tree-disconnect, close" cleanup idiom.
func smtpCleanup(tr *transport.Transport) {
	_ = tr.Write(joinCRLF("QUIT"))
}
