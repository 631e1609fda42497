/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package dns

import (
	"context"
	"fmt"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const responseCap = 64 * 1024

// QueryParams is shared by the DoT and DoH operations.
type QueryParams struct {
	Target transport.Target
	Name   string
	Type   string
}

// QueryResult is the JSON-shaped answer-section summary both probes
// return.
type QueryResult struct {
	TxID    uint16
	Answers []AnswerEntry
}

// AnswerEntry flattens one Record for the result payload.
type AnswerEntry struct {
	Name string
	Type uint16
	TTL  uint32
	Data interface{}
}

func typeByName(name string) (uint16, error) {
	switch name {
	case "A", "":
		return TypeA, nil
	case "AAAA":
		return TypeAAAA, nil
	case "NS":
		return TypeNS, nil
	case "CNAME":
		return TypeCNAME, nil
	case "PTR":
		return TypePTR, nil
	case "MX":
		return TypeMX, nil
	case "SOA":
		return TypeSOA, nil
	case "SRV":
		return TypeSRV, nil
	case "TXT":
		return TypeTXT, nil
	default:
		return 0, ecode.Newf(ecode.Validation, "dns: unsupported record type %q", name)
	}
}

func toResult(msg *Message) *QueryResult {
	out := &QueryResult{TxID: msg.TxID}
	for _, a := range msg.Answers {
		out.Answers = append(out.Answers, AnswerEntry{Name: a.Name, Type: a.Type, TTL: a.TTL, Data: a.Data})
	}
	return out
}

// QueryOverTLS performs a DNS-over-TLS lookup: 2-byte-length-framed
// query/response over the TLS-wrapped transport.Target, per spec
// §4.4.9. Callers are expected to set Target.TLS accordingly.
func QueryOverTLS(ctx context.Context, p QueryParams) (*QueryResult, error) {
	qtype, err := typeByName(p.Type)
	if err != nil {
		return nil, err
	}
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*QueryResult, error) {
		query, err := BuildQuery(p.Name, qtype)
		if err != nil {
			return nil, err
		}
		if err := tr.Write(FrameQuery(query)); err != nil {
			return nil, err
		}
		r := tr.NewCappedReader(responseCap)
		body, err := r.ReadU16BELengthPrefixed(responseCap)
		if err != nil {
			return nil, err
		}
		msg, err := DecodeMessage(body)
		if err != nil {
			return nil, err
		}
		return toResult(msg), nil
	})
}

// QueryOverHTTPS performs a DNS-over-HTTPS lookup per RFC 8484's POST
// form: an unframed DNS message as the request body with
// Content-Type: application/dns-message, read back the same way.
func QueryOverHTTPS(ctx context.Context, p QueryParams) (*QueryResult, error) {
	qtype, err := typeByName(p.Type)
	if err != nil {
		return nil, err
	}
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*QueryResult, error) {
		query, err := BuildQuery(p.Name, qtype)
		if err != nil {
			return nil, err
		}
		req := fmt.Sprintf("POST /dns-query HTTP/1.1\r\nHost: %s\r\nConnection: close\r\nContent-Type: application/dns-message\r\nContent-Length: %d\r\n\r\n", p.Target.Host, len(query))
		if err := tr.Write(append([]byte(req), query...)); err != nil {
			return nil, err
		}
		r := tr.NewCappedReader(responseCap)
		resp, err := r.ReadHTTPResponse(responseCap)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != 200 {
			return nil, ecode.Newf(ecode.ProtocolError, "dns: DoH server returned status %d", resp.StatusCode)
		}
		msg, err := DecodeMessage(resp.Body)
		if err != nil {
			return nil, err
		}
		return toResult(msg), nil
	})
}
