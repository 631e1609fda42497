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

	"github.com/miekg/dns"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// PlainQueryParams is the `/api/dns/query` request: an ordinary
// recursive lookup against a nameserver, distinct from the bit-exact
// DoT/DoH codec above. This operation isn't bound by invariant 6's
// decode(encode(x))==x requirement, so it uses a real DNS library
// instead of the hand-rolled message codec.
type PlainQueryParams struct {
	Host string
	Port int
	Name string
	Type string
}

// PlainQueryResult is a flattened answer-section summary.
type PlainQueryResult struct {
	Answers []string
}

// Query performs one recursive DNS lookup over UDP, falling back to
// TCP if the response is truncated, via miekg/dns's client.
func Query(ctx context.Context, p PlainQueryParams) (*PlainQueryResult, error) {
	qtype, ok := dns.StringToType[p.Type]
	if !ok {
		qtype = dns.TypeA
	}
	fqdn := dns.Fqdn(p.Name)
	msg := new(dns.Msg)
	msg.SetQuestion(fqdn, qtype)
	msg.RecursionDesired = true

	client := new(dns.Client)
	addr := fmt.Sprintf("%s:%d", p.Host, p.Port)

	resp, _, err := client.ExchangeContext(ctx, msg, addr)
	if err != nil {
		return nil, ecode.Wrap(ecode.DNS, err)
	}
	if resp.Truncated {
		client.Net = "tcp"
		resp, _, err = client.ExchangeContext(ctx, msg, addr)
		if err != nil {
			return nil, ecode.Wrap(ecode.DNS, err)
		}
	}

	out := &PlainQueryResult{}
	for _, rr := range resp.Answer {
		out.Answers = append(out.Answers, rr.String())
	}
	return out, nil
}
