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

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// FTPParams is the `/api/ftp/login` request. Anonymous login is used
// when Username is empty.
type FTPParams struct {
	Target   transport.Target
	Username string
	Password string
}

// FTPResult is the `/api/ftp/login` success payload.
type FTPResult struct {
	Banner        string
	Authenticated bool
	SystemType    string
}

// Login connects over the FTP control channel, reads the banner, and
// runs USER/PASS (anonymous/anonymous@ when no credentials are given),
// finishing with a best-effort SYST.
func Login(ctx context.Context, p FTPParams) (*FTPResult, error) {
	user, pass := p.Username, p.Password
	if user == `` {
		user, pass = "anonymous", "anonymous@"
	}
	return session.Run(ctx, p.Target, ftpCleanup, func(tr *transport.Transport) (*FTPResult, error) {
		r := tr.NewCappedReader(responseCap)
		code, lines, err := ReadFTPResponse(r)
		if err != nil {
			return nil, err
		}
		if code != 220 {
			return nil, ecode.New(ecode.ProtocolError, "ftp: unexpected banner code").WithWireCode(code)
		}
		res := &FTPResult{Banner: lines[0]}

		if err := tr.Write(joinCRLF("USER " + user)); err != nil {
			return nil, err
		}
		code, _, err = ReadFTPResponse(r)
		if err != nil {
			return nil, err
		}
		if code == 230 {
			res.Authenticated = true
		} else if code == 331 {
			if err := tr.Write(joinCRLF("PASS " + pass)); err != nil {
				return nil, err
			}
			code, _, err = ReadFTPResponse(r)
			if err != nil {
				return nil, err
			}
			res.Authenticated = code == 230
		}
		if !res.Authenticated {
			return nil, ecode.New(ecode.AuthFail, "ftp: login rejected").WithWireCode(code)
		}

		if err := tr.Write(joinCRLF("SYST")); err == nil {
			if _, lines, serr := ReadFTPResponse(r); serr == nil && len(lines) > 0 {
				res.SystemType = lines[0]
			}
		}
		return res, nil
	})
}

func ftpCleanup(tr *transport.Transport) {
	_ = tr.Write(joinCRLF("QUIT"))
}
