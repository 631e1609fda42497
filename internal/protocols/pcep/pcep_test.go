/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package pcep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCommonHeaderRoundTrip(t *testing.T) {
	b := encodeCommonHeader(MsgPCReq, 42)
	msgType, length, err := decodeCommonHeader(b)
	require.NoError(t, err)
	assert.Equal(t, MsgPCReq, msgType)
	assert.Equal(t, 42, length)
}

func TestEncodeDecodeObjectRoundTrip(t *testing.T) {
	obj := encodeObject(ClassOpen, 1, true, false, []byte{1, 2, 3})
	assert.Equal(t, 0, len(obj)%4)

	decoded, err := decodeObjects(obj)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, ClassOpen, decoded[0].Class)
	assert.EqualValues(t, 1, decoded[0].OT)
	assert.True(t, decoded[0].P)
	assert.False(t, decoded[0].I)
	assert.Equal(t, []byte{1, 2, 3}, decoded[0].Value)
}

func TestOpenMessageRoundTrip(t *testing.T) {
	msg := encodeOpenMessage(OpenParams{Keepalive: 30, Deadtimer: 120, SessionID: 7})
	msgType, length, err := decodeCommonHeader(msg)
	require.NoError(t, err)
	assert.Equal(t, MsgOpen, msgType)
	assert.Equal(t, len(msg), length)

	objs, err := decodeObjects(msg[commonHeaderLen:])
	require.NoError(t, err)
	result, err := decodeOpenMessage(objs)
	require.NoError(t, err)
	assert.EqualValues(t, 30, result.Keepalive)
	assert.EqualValues(t, 120, result.Deadtimer)
	assert.EqualValues(t, 7, result.SessionID)
}

func TestPCReqMessageRejectsNonIPv4(t *testing.T) {
	_, err := encodePCReqMessage(ReqParams{SrcAddr: "not-an-ip", DstAddr: "10.0.0.1"})
	assert.Error(t, err)
}

func TestPCReqMessageEncodesEndpoints(t *testing.T) {
	msg, err := encodePCReqMessage(ReqParams{RequestID: 5, SrcAddr: "10.0.1.1", DstAddr: "10.0.2.1"})
	require.NoError(t, err)
	_, length, err := decodeCommonHeader(msg)
	require.NoError(t, err)
	assert.Equal(t, len(msg), length)

	objs, err := decodeObjects(msg[commonHeaderLen:])
	require.NoError(t, err)
	ep, ok := findObject(objs, ClassEndpoints)
	require.True(t, ok)
	assert.Len(t, ep.Value, 8)
}

func TestEROAndMetricRoundTripMatchesSpecScenario(t *testing.T) {
	sub1, err := encodeEROIPv4Subobject("10.0.1.1", 32, false)
	require.NoError(t, err)
	sub2, err := encodeEROIPv4Subobject("10.1.0.1", 32, false)
	require.NoError(t, err)
	sub3, err := encodeEROIPv4Subobject("10.0.2.1", 32, false)
	require.NoError(t, err)
	ero := encodeEROObject(sub1, sub2, sub3)
	metric := encodeMetricObject(metricTypeIGP, 100.0)

	objs, err := decodeObjects(append(ero, metric...))
	require.NoError(t, err)

	rep, err := decodePCRepMessage(objs)
	require.NoError(t, err)
	assert.True(t, rep.PathFound)
	assert.Equal(t, []string{"10.0.1.1/32", "10.1.0.1/32", "10.0.2.1/32"}, rep.Hops)
	require.NotNil(t, rep.IGPCost)
	assert.Equal(t, float32(100.0), *rep.IGPCost)
}

func TestDecodePCRepNoPath(t *testing.T) {
	noPath := encodeObject(ClassNoPath, 1, false, false, nil)
	objs, err := decodeObjects(noPath)
	require.NoError(t, err)
	rep, err := decodePCRepMessage(objs)
	require.NoError(t, err)
	assert.False(t, rep.PathFound)
}
