/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package api

import "net"

// Blocklist is the target-block predicate from spec 6.3/4.5 step 4: a
// process-wide, read-only, concurrency-safe collaborator consulted
// before transport open. This implementation resolves the host and
// refuses it if any resolved address falls inside a configured CIDR
// block; a production deployment might instead query an external
// reputation service, which is why the engine treats this as a
// pluggable collaborator rather than baking the policy in.
type Blocklist struct {
	nets []*net.IPNet
}

// NewBlocklist parses cfg.Blocked_Networks (CIDR strings); entries that
// fail to parse are skipped rather than failing gateway startup.
func NewBlocklist(cidrs []string) *Blocklist {
	bl := &Blocklist{}
	for _, c := range cidrs {
		if _, n, err := net.ParseCIDR(c); err == nil {
			bl.nets = append(bl.nets, n)
		}
	}
	return bl
}

// IsBlocked reports whether host (a literal IP or hostname) resolves
// into a blocked network. Safe for concurrent use; it only reads bl.nets.
func (bl *Blocklist) IsBlocked(host string) bool {
	if len(bl.nets) == 0 {
		return false
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		if ip := net.ParseIP(host); ip != nil {
			ips = []net.IP{ip}
		} else {
			return false
		}
	}
	for _, ip := range ips {
		for _, n := range bl.nets {
			if n.Contains(ip) {
				return true
			}
		}
	}
	return false
}
