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

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// POP3Params is the `/api/pop3/auth` request. Password is only sent if
// the server accepts USER.
type POP3Params struct {
	Target   transport.Target
	Username string
	Password string
}

// POP3Result reports the greeting and the auth outcome; MessageCount
// and MailboxSizeBytes come from a best-effort STAT issued after a
// successful login.
type POP3Result struct {
	Greeting         string
	Authenticated    bool
	MessageCount     int
	MailboxSizeBytes int
}

// Auth connects, reads the greeting, and (if credentials are supplied)
// attempts USER/PASS, finishing with STAT on success.
func Auth(ctx context.Context, p POP3Params) (*POP3Result, error) {
	return session.Run(ctx, p.Target, pop3Cleanup, func(tr *transport.Transport) (*POP3Result, error) {
		r := tr.NewCappedReader(responseCap)
		ok, greeting, err := ReadPOP3Line(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ecode.New(ecode.ProtocolError, "pop3: negative greeting: "+greeting)
		}
		res := &POP3Result{Greeting: greeting}
		if p.Username == `` {
			return res, nil
		}

		if err := tr.Write(joinCRLF("USER " + p.Username)); err != nil {
			return nil, err
		}
		ok, msg, err := ReadPOP3Line(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ecode.New(ecode.AuthFail, "pop3: USER rejected: "+msg)
		}

		if err := tr.Write(joinCRLF("PASS " + p.Password)); err != nil {
			return nil, err
		}
		ok, msg, err = ReadPOP3Line(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ecode.New(ecode.AuthFail, "pop3: PASS rejected: "+msg)
		}
		res.Authenticated = true

		if err := tr.Write(joinCRLF("STAT")); err == nil {
			if ok, stat, serr := ReadPOP3Line(r); serr == nil && ok {
				var n, size int
				if _, serr := fmt.Sscanf(stat, "%d %d", &n, &size); serr == nil {
					res.MessageCount = n
					res.MailboxSizeBytes = size
				}
			}
		}
		return res, nil
	})
}

// pop3Cleanup sends QUIT best-effort.
func pop3Cleanup(tr *transport.Transport) {
	_ = tr.Write(joinCRLF("QUIT"))
}
