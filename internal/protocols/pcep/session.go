/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package pcep

import (
	"context"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// defaultOpen are the session parameters this engine always offers;
// the probe never needs a caller-tunable keepalive/deadtimer.
var defaultOpen = OpenParams{Keepalive: 30, Deadtimer: 120, SessionID: 1}

// Params is the `/api/pcep/computepath` request.
type Params struct {
	Target    transport.Target
	SrcAddr   string
	DstAddr   string
	Bandwidth *float32
}

// ComputeResult is the success payload.
type ComputeResult struct {
	PathFound bool
	Hops      []string
	IGPCost   *float32
	TECost    *float32
}

// ComputePath opens a PCEP session (OPEN/KEEPALIVE exchange) and runs
// one PCReq/PCRep round trip.
func ComputePath(ctx context.Context, p Params) (*ComputeResult, error) {
	return session.Run(ctx, p.Target, sendClose, func(tr *transport.Transport) (*ComputeResult, error) {
		if err := tr.Write(encodeOpenMessage(defaultOpen)); err != nil {
			return nil, err
		}
		openMsg, err := readMessageSkipping(tr, MsgKeepalive)
		if err != nil {
			return nil, err
		}
		if openMsg.Type != MsgOpen {
			return nil, ecode.New(ecode.UnexpectedMsg, "pcep: expected OPEN from peer")
		}
		if _, err := decodeOpenMessage(openMsg.Objects); err != nil {
			return nil, err
		}

		if err := tr.Write(encodeKeepaliveMessage()); err != nil {
			return nil, err
		}

		reqBytes, err := encodePCReqMessage(ReqParams{RequestID: 1, SrcAddr: p.SrcAddr, DstAddr: p.DstAddr, Bandwidth: p.Bandwidth})
		if err != nil {
			return nil, err
		}
		if err := tr.Write(reqBytes); err != nil {
			return nil, err
		}

		repMsg, err := readMessageSkipping(tr, MsgKeepalive)
		if err != nil {
			return nil, err
		}
		if repMsg.Type == MsgError {
			return nil, ecode.New(ecode.ProtocolError, "pcep: peer returned a PCErr message")
		}
		if repMsg.Type != MsgPCRep {
			return nil, ecode.New(ecode.UnexpectedMsg, "pcep: expected PCRep from peer")
		}
		rep, err := decodePCRepMessage(repMsg.Objects)
		if err != nil {
			return nil, err
		}
		return &ComputeResult{PathFound: rep.PathFound, Hops: rep.Hops, IGPCost: rep.IGPCost, TECost: rep.TECost}, nil
	})
}

func sendClose(tr *transport.Transport) {
	_ = tr.Write(encodeCommonHeader(MsgClose, commonHeaderLen))
}
