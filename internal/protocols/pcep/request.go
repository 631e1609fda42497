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
	"math"
	"net"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

const (
	rpObjectType        byte = 1
	endpointsObjectType byte = 1
	bandwidthObjectType byte = 1
)

// ReqParams describes one PCReq: RP + END-POINTS +
// optional BANDWIDTH.
type ReqParams struct {
	RequestID uint32
	SrcAddr   string
	DstAddr   string
	Bandwidth *float32 // nil omits the BANDWIDTH object
}

func encodePCReqMessage(p ReqParams) ([]byte, error) {
	srcIP := net.ParseIP(p.SrcAddr).To4()
	dstIP := net.ParseIP(p.DstAddr).To4()
	if srcIP == nil || dstIP == nil {
		return nil, ecode.New(ecode.Validation, "pcep: srcAddr/dstAddr must be IPv4 literals")
	}

	rpValue := make([]byte, 8)
	binary.BigEndian.PutUint32(rpValue[4:8], p.RequestID)
	rp := encodeObject(ClassRP, rpObjectType, false, false, rpValue)

	epValue := append(append([]byte{}, srcIP...), dstIP...)
	ep := encodeObject(ClassEndpoints, endpointsObjectType, false, false, epValue)

	objs := append(rp, ep...)
	if p.Bandwidth != nil {
		bwValue := make([]byte, 4)
		binary.BigEndian.PutUint32(bwValue, math.Float32bits(*p.Bandwidth))
		objs = append(objs, encodeObject(ClassBandwidth, bandwidthObjectType, false, false, bwValue)...)
	}

	return append(encodeCommonHeader(MsgPCReq, commonHeaderLen+len(objs)), objs...), nil
}
