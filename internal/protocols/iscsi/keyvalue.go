/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package iscsi

import "strings"

// encodeKeyValues renders ordered key=value pairs as a NUL-separated
// data segment, 4-byte-padded with NULs. It returns the padded bytes
// and the unpadded length for the BHS's DataSegmentLength field.
func encodeKeyValues(pairs [][2]string) (padded []byte, rawLen int) {
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(p[0])
		sb.WriteByte('=')
		sb.WriteString(p[1])
		sb.WriteByte(0)
	}
	raw := []byte(sb.String())
	padded = make([]byte, paddedLen(len(raw)))
	copy(padded, raw)
	return padded, len(raw)
}

// parseKeyValues splits a data segment into ordered key=value pairs,
// preserving duplicate keys (SendTargets responses repeat TargetAddress
// under one TargetName).
func parseKeyValues(data []byte) [][2]string {
	var out [][2]string
	for _, tok := range strings.Split(strings.TrimRight(string(data), "\x00"), "\x00") {
		if tok == "" {
			continue
		}
		idx := strings.IndexByte(tok, '=')
		if idx < 0 {
			continue
		}
		out = append(out, [2]string{tok[:idx], tok[idx+1:]})
	}
	return out
}

func lookupKey(pairs [][2]string, key string) (string, bool) {
	for _, p := range pairs {
		if p[0] == key {
			return p[1], true
		}
	}
	return "", false
}
