/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package pcep

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

const (
	eroSubobjIPv4Prefix byte = 1
	metricTypeIGP       byte = 1
	metricTypeTE        byte = 2
)

// encodeEROIPv4Subobject builds one ERO subobject carrying an IPv4
// prefix: "type high-bit is loose/strict flag, type 1
// = IPv4 prefix addr(4) | prefixLen(1) | resv(1)".
func encodeEROIPv4Subobject(addr string, prefixLen byte, loose bool) ([]byte, error) {
	ip := net.ParseIP(addr).To4()
	if ip == nil {
		return nil, ecode.New(ecode.Validation, "pcep: ERO subobject address must be IPv4")
	}
	value := append(append([]byte{}, ip...), prefixLen, 0)
	out := make([]byte, 2+len(value))
	out[0] = eroSubobjIPv4Prefix
	if loose {
		out[0] |= 0x80
	}
	out[1] = byte(len(out))
	copy(out[2:], value)
	return out, nil
}

func encodeEROObject(subobjs ...[]byte) []byte {
	var value []byte
	for _, s := range subobjs {
		value = append(value, s...)
	}
	return encodeObject(ClassERO, 1, false, false, value)
}

// EROHop is one decoded ERO subobject.
type EROHop struct {
	Address   string
	PrefixLen byte
	Loose     bool
}

func decodeEROObject(obj pcepObject) ([]EROHop, error) {
	var hops []EROHop
	b := obj.Value
	for len(b) > 0 {
		if len(b) < 2 {
			return nil, ecode.New(ecode.Malformed, "pcep: truncated ERO subobject header")
		}
		loose := b[0]&0x80 != 0
		typ := b[0] & 0x7f
		length := int(b[1])
		if length < 2 || length > len(b) {
			return nil, ecode.New(ecode.Malformed, "pcep: ERO subobject length out of range")
		}
		if typ == eroSubobjIPv4Prefix && length >= 8 {
			ip := net.IP(b[2:6])
			hops = append(hops, EROHop{Address: ip.String(), PrefixLen: b[6], Loose: loose})
		}
		b = b[length:]
	}
	return hops, nil
}

func encodeMetricObject(metricType byte, value float32) []byte {
	v := make([]byte, 8)
	v[2] = 0 // flags
	v[3] = metricType
	binary.BigEndian.PutUint32(v[4:8], math.Float32bits(value))
	return encodeObject(ClassMetric, 1, false, false, v)
}

func decodeMetricObject(obj pcepObject) (metricType byte, value float32, err error) {
	if len(obj.Value) < 8 {
		return 0, 0, ecode.New(ecode.Malformed, "pcep: METRIC object shorter than 8 bytes")
	}
	metricType = obj.Value[3]
	value = math.Float32frombits(binary.BigEndian.Uint32(obj.Value[4:8]))
	return metricType, value, nil
}

// RepResult is the decoded outcome of one PCRep message.
type RepResult struct {
	PathFound bool
	Hops      []string
	IGPCost   *float32
	TECost    *float32
}

func decodePCRepMessage(objs []pcepObject) (*RepResult, error) {
	if _, noPath := findObject(objs, ClassNoPath); noPath {
		return &RepResult{PathFound: false}, nil
	}

	result := &RepResult{PathFound: true}
	if eroObj, ok := findObject(objs, ClassERO); ok {
		hops, err := decodeEROObject(eroObj)
		if err != nil {
			return nil, err
		}
		for _, h := range hops {
			result.Hops = append(result.Hops, fmt.Sprintf("%s/%d", h.Address, h.PrefixLen))
		}
	}
	for _, o := range objs {
		if o.Class != ClassMetric {
			continue
		}
		typ, val, err := decodeMetricObject(o)
		if err != nil {
			return nil, err
		}
		v := val
		switch typ {
		case metricTypeIGP:
			result.IGPCost = &v
		case metricTypeTE:
			result.TECost = &v
		}
	}
	return result, nil
}
