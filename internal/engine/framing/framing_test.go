/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package framing

import (
	"bytes"
	"testing"
	"time"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/stretchr/testify/require"
)

// fakeByteReader adapts a bytes.Reader to the ByteReader interface for
// tests that don't need a live socket.
type fakeByteReader struct {
	*bytes.Reader
}

func (fakeByteReader) SetReadDeadline(time.Time) error { return nil }

func newTestReader(data []byte, cap int) *Reader {
	return NewReader(fakeByteReader{bytes.NewReader(data)}, cap)
}

func TestReadExactlyLeavesTrailingBytes(t *testing.T) {
	r := newTestReader([]byte("HELLOworld"), 0)
	got, err := r.ReadExactly(5)
	require.NoError(t, err)
	require.Equal(t, "HELLO", string(got))
	require.Equal(t, "world", string(r.Buffered()))
}

func TestReadUntilDelimiter(t *testing.T) {
	r := newTestReader([]byte("line one\r\nline two\r\n"), 0)
	l1, err := r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "line one", l1)
	l2, err := r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "line two", l2)
}

func TestReadExactlyShortReadIsTyped(t *testing.T) {
	r := newTestReader([]byte("abc"), 0)
	_, err := r.ReadExactly(10)
	require.Error(t, err)
	require.Equal(t, ecode.ShortRead, ecode.KindOf(err))
}

func TestLimitExceeded(t *testing.T) {
	r := newTestReader([]byte("abcdefghij"), 4)
	_, err := r.ReadExactly(5)
	require.Error(t, err)
	require.Equal(t, ecode.LimitExceeded, ecode.KindOf(err))
}

func TestU32BELengthPrefixed(t *testing.T) {
	payload := []byte("payload-bytes")
	hdr := make([]byte, 4)
	hdr[3] = byte(len(payload))
	data := append(append([]byte{}, hdr...), payload...)
	data = append(data, []byte("trailing")...)
	r := newTestReader(data, 0)
	got, err := r.ReadU32BELengthPrefixed(0)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	require.Equal(t, "trailing", string(r.Buffered()))
}

func TestChunkedRoundTrip(t *testing.T) {
	body := []byte("the quick brown fox jumps over the lazy dog, repeated for chunk boundaries")
	encoded := EncodeChunked(body, 7)
	httpMsg := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" + string(encoded)
	r := newTestReader([]byte(httpMsg), 0)
	resp, err := r.ReadHTTPResponse(0)
	require.NoError(t, err)
	require.Equal(t, body, resp.Body)
}

func TestSMB2FrameRejectsBadMagic(t *testing.T) {
	body := append([]byte{0xFE, 'X', 'X', 'X'}, make([]byte, 60)...)
	hdr := EncodeSMB2NetBIOSHeader(len(body))
	data := append(append([]byte{}, hdr...), body...)
	r := newTestReader(data, 0)
	_, err := r.ReadSMB2Message(0)
	require.Error(t, err)
	require.Equal(t, ecode.Malformed, ecode.KindOf(err))
}

func TestSMB2FrameRoundTrip(t *testing.T) {
	body := append(append([]byte{}, SMB2Magic...), make([]byte, 60)...)
	hdr := EncodeSMB2NetBIOSHeader(len(body))
	data := append(append([]byte{}, hdr...), body...)
	r := newTestReader(data, 4096)
	got, err := r.ReadSMB2Message(4096)
	require.NoError(t, err)
	require.Equal(t, body, got)
}
