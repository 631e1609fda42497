/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package hl7

import (
	"context"

	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// SendParams is the `/api/hl7/send` request.
type SendParams struct {
	Target transport.Target
	BuildParams
}

// SendResult is the `/api/hl7/send` success payload.
type SendResult struct {
	Sent     string
	Response string
	Ack      *Ack
	MSH      MSHFields
}

// Send frames one HL7 message over MLLP, sends it, and parses the ACK.
func Send(ctx context.Context, p SendParams) (*SendResult, error) {
	msg := BuildMessage(p.BuildParams)
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*SendResult, error) {
		if err := tr.Write(wrapMLLP([]byte(msg))); err != nil {
			return nil, err
		}
		resp, err := readMLLPResponse(tr)
		if err != nil {
			return nil, err
		}
		parsed, err := ParseMessage(string(resp))
		if err != nil {
			return &SendResult{Sent: msg, Response: string(resp)}, nil
		}
		return &SendResult{
			Sent:     msg,
			Response: string(resp),
			Ack:      parsed.Ack,
			MSH:      parsed.MSH,
		}, nil
	})
}
