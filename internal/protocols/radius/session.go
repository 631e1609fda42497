/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package radius

import (
	"context"
	"encoding/binary"

	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const responseCap = 16 * 1024

// radsecSecret is the fixed shared secret RFC 6614 mandates for RADSEC.
const radsecSecret = "radsec"

// Params is the `/api/radius/accessrequest` request. SharedSecret is
// caller-supplied for plain RADIUS.
type Params struct {
	Target       transport.Target
	Username     string
	Password     string
	SharedSecret string
}

// AccessRequest builds, sends and verifies one Access-Request, per spec
// §4.4.5.
func AccessRequest(ctx context.Context, p Params) (*AccessResult, error) {
	return runAccessRequest(ctx, p.Target, p.Username, p.Password, p.SharedSecret)
}

// RadsecParams is the `/api/radius/radsec` request. The shared secret is
// fixed to "radsec" per RFC 6614 regardless of any value the caller
// supplies — the target is expected to dial in over TLS.
type RadsecParams struct {
	Target   transport.Target
	Username string
	Password string
}

// Radsec runs the same Access-Request exchange as AccessRequest but
// forces the RFC 6614 fixed shared secret.
func Radsec(ctx context.Context, p RadsecParams) (*AccessResult, error) {
	return runAccessRequest(ctx, p.Target, p.Username, p.Password, radsecSecret)
}

func runAccessRequest(ctx context.Context, target transport.Target, username, password, secret string) (*AccessResult, error) {
	req, err := buildAccessRequest(username, password, secret)
	if err != nil {
		return nil, err
	}
	return session.Run(ctx, target, nil, func(tr *transport.Transport) (*AccessResult, error) {
		if err := tr.Write(req.Bytes); err != nil {
			return nil, err
		}
		reply, err := readPacket(tr)
		if err != nil {
			return nil, err
		}
		return parseAndVerify(reply, req, secret)
	})
}

func readPacket(tr *transport.Transport) ([]byte, error) {
	r := tr.NewCappedReader(responseCap)
	hdr, err := r.ReadExactly(headerLen)
	if err != nil {
		return nil, err
	}
	total := binary.BigEndian.Uint16(hdr[2:4])
	if int(total) <= headerLen {
		return hdr, nil
	}
	rest, err := r.ReadExactly(int(total) - headerLen)
	if err != nil {
		return nil, err
	}
	return append(hdr, rest...), nil
}
