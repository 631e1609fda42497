/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package ignite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHandshakeRequestIsElevenBytes(t *testing.T) {
	req := buildHandshakeRequest()
	assert.Len(t, req, 11)
	assert.Equal(t, handshakeOpCode, req[4])
}

func TestCacheIDMatchesJavaStringHashCode(t *testing.T) {
	// "myCache".hashCode() == 1482644790 under Java's String.hashCode.
	assert.Equal(t, int32(1482644790), CacheID("myCache"))
}

func TestCacheIDEmptyStringIsZero(t *testing.T) {
	assert.Equal(t, int32(0), CacheID(""))
}

func TestEncodeOpRequestShape(t *testing.T) {
	req := encodeOpRequest(OpCacheGet, 99, []byte{1, 2, 3})
	require.Len(t, req, 4+2+8+3)
	assert.Equal(t, byte(0xE8), req[4]) // opCode low byte, LE
}

func TestDecodeTaggedValueString(t *testing.T) {
	b := encodeTaggedString("hello")
	val, n, err := decodeTaggedValue(b)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)
	assert.Equal(t, TypeString, val.Kind)
	assert.Equal(t, "hello", val.Value)
}

func TestDecodeTaggedValueNull(t *testing.T) {
	val, n, err := decodeTaggedValue([]byte{TypeNull})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Nil(t, val.Value)
}

func TestDecodeTaggedValueRejectsTruncatedInt(t *testing.T) {
	_, _, err := decodeTaggedValue([]byte{TypeInt, 1, 2})
	assert.Error(t, err)
}
