/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package iscsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLoginRequestBHSShape(t *testing.T) {
	pdu := buildLoginRequest(0, 0, 7, true, StageLoginOperational, StageFullFeature, [][2]string{
		{"InitiatorName", "iqn.test:x"},
	})
	require.GreaterOrEqual(t, len(pdu), bhsLen)
	assert.Equal(t, OpLoginRequest, pdu[0])

	flags := pdu[1]
	assert.NotZero(t, flags&flagTransit)
	assert.Equal(t, StageLoginOperational, (flags>>2)&0x3)
	assert.Equal(t, StageFullFeature, flags&0x3)

	segLen, err := dataSegmentLength(pdu)
	require.NoError(t, err)
	assert.Equal(t, len("InitiatorName=iqn.test:x\x00"), int(segLen))
	assert.Equal(t, 0, (len(pdu)-bhsLen)%4)
}

func TestParseLoginResponseHeaderRoundTrip(t *testing.T) {
	bhs := make([]byte, bhsLen)
	bhs[0] = OpLoginResponse
	bhs[1] = flagTransit | (StageFullFeature << 2) | StageFullFeature
	bhs[24] = 0
	bhs[25] = 0
	bhs[26] = 0
	bhs[27] = 5 // StatSN = 5
	bhs[36] = 0 // StatusClass
	bhs[37] = 0 // StatusDetail

	h, err := parseLoginResponseHeader(bhs)
	require.NoError(t, err)
	assert.True(t, h.Transit)
	assert.Equal(t, StageFullFeature, h.CSG)
	assert.Equal(t, StageFullFeature, h.NSG)
	assert.EqualValues(t, 5, h.StatSN)
	assert.Equal(t, byte(0), h.StatusClass)
}

func TestParseLoginResponseHeaderRejectsWrongOpcode(t *testing.T) {
	bhs := make([]byte, bhsLen)
	bhs[0] = OpTextResponse
	_, err := parseLoginResponseHeader(bhs)
	assert.Error(t, err)
}

func TestKeyValueRoundTrip(t *testing.T) {
	padded, rawLen := encodeKeyValues([][2]string{
		{"SendTargets", "All"},
		{"AuthMethod", "CHAP,None"},
	})
	assert.Equal(t, 0, len(padded)%4)
	assert.LessOrEqual(t, rawLen, len(padded))

	kvs := parseKeyValues(padded[:rawLen])
	require.Len(t, kvs, 2)
	assert.Equal(t, [2]string{"SendTargets", "All"}, kvs[0])
	assert.Equal(t, [2]string{"AuthMethod", "CHAP,None"}, kvs[1])

	v, ok := lookupKey(kvs, "AuthMethod")
	require.True(t, ok)
	assert.Equal(t, "CHAP,None", v)

	_, ok = lookupKey(kvs, "Missing")
	assert.False(t, ok)
}

func TestGroupTargetsAttachesAddressesToPrecedingName(t *testing.T) {
	kvs := [][2]string{
		{"TargetName", "iqn.2024-01.example:disk0"},
		{"TargetAddress", "10.0.0.1:3260,1"},
		{"TargetAddress", "10.0.0.2:3260,1"},
		{"TargetName", "iqn.2024-01.example:disk1"},
		{"TargetAddress", "10.0.0.3:3260,1"},
	}
	targets := groupTargets(kvs)
	require.Len(t, targets, 2)
	assert.Equal(t, "iqn.2024-01.example:disk0", targets[0].Name)
	assert.Equal(t, []string{"10.0.0.1:3260,1", "10.0.0.2:3260,1"}, targets[0].Addresses)
	assert.Equal(t, "iqn.2024-01.example:disk1", targets[1].Name)
	assert.Equal(t, []string{"10.0.0.3:3260,1"}, targets[1].Addresses)
}

func TestGroupTargetsIgnoresAddressWithNoPrecedingName(t *testing.T) {
	targets := groupTargets([][2]string{{"TargetAddress", "10.0.0.1:3260,1"}})
	assert.Empty(t, targets)
}

func TestLoginStatusTextKnownAndUnknown(t *testing.T) {
	assert.Contains(t, loginStatusText(0, 0), "Success")
	assert.Contains(t, loginStatusText(2, 1), "Authentication failure")
	assert.Contains(t, loginStatusText(9, 9), "class 9 detail 9")
}

func TestPaddedLen(t *testing.T) {
	assert.Equal(t, 0, paddedLen(0))
	assert.Equal(t, 4, paddedLen(1))
	assert.Equal(t, 4, paddedLen(4))
	assert.Equal(t, 8, paddedLen(5))
}
