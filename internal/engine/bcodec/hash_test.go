/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package bcodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// RFC 1320 test vectors for MD4.
func TestMD4Vectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{``, `31d6cfe0d16ae931b73c59d7e0c089c0`},
		{`a`, `bde52cb31de33e46245e05fbdbd6fb24`},
		{`abc`, `a448017aaf21d8525fc10ae87aa6729d`},
		{`message digest`, `d9130a8164549fe818874806e1c7014b`},
	}
	for _, c := range cases {
		got := HexEncode(MD4([]byte(c.in)))
		require.Equal(t, c.want, got, "MD4(%q)", c.in)
	}
}

func TestHMACMD5Vector(t *testing.T) {
	// RFC 2104 test case 1.
	key := make([]byte, 16)
	for i := range key {
		key[i] = 0x0b
	}
	got := HexEncode(HMACMD5(key, []byte("Hi There")))
	require.Equal(t, "9294727a3638bb1c13f48ef8158bfc9d", got)
}

func TestConstantTimeEqual(t *testing.T) {
	require.True(t, ConstantTimeEqual([]byte("abc"), []byte("abc")))
	require.False(t, ConstantTimeEqual([]byte("abc"), []byte("abd")))
	require.False(t, ConstantTimeEqual([]byte("abc"), []byte("ab")))
}

func TestFILETIMERoundTrip(t *testing.T) {
	sec, nsec := int64(1700000000), int64(123400000)
	ft := FILETIMEFromUnix(sec, nsec)
	gotSec, gotNsec := UnixFromFILETIME(ft)
	require.Equal(t, sec, gotSec)
	require.InDelta(t, nsec, gotNsec, 100)
}

func TestFormatIPv6(t *testing.T) {
	b := make([]byte, 16)
	b[15] = 1
	s, err := FormatIPv6(b)
	require.NoError(t, err)
	require.Equal(t, "0000:0000:0000:0000:0000:0000:0000:0001", s)
}
