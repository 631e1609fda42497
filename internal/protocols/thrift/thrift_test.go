/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package thrift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMessageRoundTrip(t *testing.T) {
	msg := encodeMessage(MsgCall, "ping", 7, []field{
		{Type: TypeString, ID: 1, Value: "hello"},
		{Type: TypeI32, ID: 2, Value: int32(42)},
	})
	decoded, err := decodeMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, MsgCall, decoded.MsgType)
	assert.Equal(t, "ping", decoded.Method)
	assert.EqualValues(t, 7, decoded.SeqID)
	require.Len(t, decoded.Fields, 2)
	assert.Equal(t, "hello", decoded.Fields[0].Value)
	assert.Equal(t, int32(42), decoded.Fields[1].Value)
}

func TestDecodeMessageRejectsBadVersion(t *testing.T) {
	msg := encodeMessage(MsgCall, "ping", 1, nil)
	msg[0] = 0x00
	_, err := decodeMessage(msg)
	assert.Error(t, err)
}

func TestDecodeStructBodyEnforcesFieldCap(t *testing.T) {
	var fields []field
	for i := 0; i < maxFields+5; i++ {
		fields = append(fields, field{Type: TypeBool, ID: int16(i), Value: true})
	}
	body := encodeStructBody(fields)
	_, _, err := decodeStructBody(body)
	assert.Error(t, err)
}

func TestDecodeValueStructAdvancesFixedWidth(t *testing.T) {
	buf := make([]byte, nestedStructSkip+3)
	v, n, err := decodeValue(TypeStruct, buf)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, nestedStructSkip, n)
}

func TestDecodeListCapsElementsButAdvancesPastAll(t *testing.T) {
	var raw []byte
	raw = append(raw, TypeI32)
	sizeBuf := make([]byte, 4)
	const size = 25
	putU32BE(sizeBuf, size)
	raw = append(raw, sizeBuf...)
	for i := 0; i < size; i++ {
		v, _ := encodeValue(TypeI32, int32(i)), 0
		raw = append(raw, v...)
	}
	val, n, err := decodeValue(TypeList, raw)
	require.NoError(t, err)
	elems, ok := val.([]interface{})
	require.True(t, ok)
	assert.Len(t, elems, maxFields)
	assert.Equal(t, len(raw), n)
}

func TestExceptionMessageDecodesAsSuccessWithFlag(t *testing.T) {
	msg := encodeMessage(MsgException, "doThing", 3, []field{
		{Type: TypeString, ID: 1, Value: "boom"},
	})
	decoded, err := decodeMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, MsgException, decoded.MsgType)
}
