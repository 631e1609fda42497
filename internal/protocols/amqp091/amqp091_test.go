/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package amqp091

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldTableRoundTrip(t *testing.T) {
	encoded := encodeFieldTable(map[string]string{"product": "probe"})
	decoded, rest, err := decodeFieldTable(encoded)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, "probe", decoded["product"])
}

func TestShortAndLongStringRoundTrip(t *testing.T) {
	s, rest, err := decodeShortString(encodeShortString("PLAIN"))
	require.NoError(t, err)
	require.Equal(t, "PLAIN", s)
	require.Empty(t, rest)

	l, rest, err := decodeLongString(encodeLongStringBytes([]byte("hello")))
	require.NoError(t, err)
	require.Equal(t, "hello", l)
	require.Empty(t, rest)
}

func TestSplitSpace(t *testing.T) {
	require.Equal(t, []string{"PLAIN", "AMQPLAIN"}, splitSpace("PLAIN AMQPLAIN"))
	require.Nil(t, splitSpace(""))
}

func TestEncodeMethodFrameHasFrameEnd(t *testing.T) {
	f := encodeMethodFrame(classConnection, methodConnectionStartOk, []byte{1, 2, 3})
	require.Equal(t, frameMethod, f[0])
	require.Equal(t, frameEnd, f[len(f)-1])
}
