/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package ignite

import (
	"context"
	"fmt"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// Params is the `/api/ignite/probe` request: just a target, since the
// handshake alone is enough to fingerprint the server.
type Params struct {
	Target transport.Target
}

// ProbeResult reports what the handshake told us.
type ProbeResult struct {
	Success    bool
	NodeUUID   string
	ErrorCode  int32
	ErrorText  string
}

// Probe performs the handshake and nothing else.
func Probe(ctx context.Context, p Params) (*ProbeResult, error) {
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*ProbeResult, error) {
		if err := writeHandshake(tr); err != nil {
			return nil, err
		}
		hs, err := readHandshakeResponse(tr)
		if err != nil {
			return nil, err
		}
		if !hs.Success {
			return &ProbeResult{Success: false, ErrorCode: hs.ErrorCode, ErrorText: hs.ErrorMessage}, nil
		}
		return &ProbeResult{Success: true, NodeUUID: formatUUID(hs.NodeUUIDHi, hs.NodeUUIDLo)}, nil
	})
}

func formatUUID(hi, lo uint64) string {
	return fmt.Sprintf("%016x-%016x", hi, lo)
}

// CacheGetParams is the `/api/ignite/call` request: fetch one key from
// a named cache after handshaking.
type CacheGetParams struct {
	Target    transport.Target
	CacheName string
	Key       string
}

// CacheGetResult is the decoded OP_CACHE_GET outcome.
type CacheGetResult struct {
	CacheID int32
	Found   bool
	Value   *TaggedValue
}

// Call performs the handshake then one OP_CACHE_GET.
func Call(ctx context.Context, p CacheGetParams) (*CacheGetResult, error) {
	if p.CacheName == "" {
		return nil, ecode.New(ecode.Validation, "ignite: cacheName is required")
	}
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*CacheGetResult, error) {
		if err := writeHandshake(tr); err != nil {
			return nil, err
		}
		hs, err := readHandshakeResponse(tr)
		if err != nil {
			return nil, err
		}
		if !hs.Success {
			return nil, ecode.Newf(ecode.ProtocolError, "ignite: handshake rejected: %s", hs.ErrorMessage)
		}

		cacheID := CacheID(p.CacheName)
		body := append(encodeTaggedInt(cacheID)[1:5], 0) // cacheId(i32 LE) + flags(1)=0
		body = append(body, encodeTaggedString(p.Key)...)
		req := encodeOpRequest(OpCacheGet, 1, body)
		if err := tr.Write(req); err != nil {
			return nil, err
		}
		resp, err := readOpResponse(tr)
		if err != nil {
			return nil, err
		}
		if resp.Status != 0 {
			return &CacheGetResult{CacheID: cacheID, Found: false}, nil
		}
		if len(resp.Body) == 0 {
			return &CacheGetResult{CacheID: cacheID, Found: false}, nil
		}
		val, _, err := decodeTaggedValue(resp.Body)
		if err != nil {
			return nil, err
		}
		found := val.Kind != TypeNull
		return &CacheGetResult{CacheID: cacheID, Found: found, Value: val}, nil
	})
}
