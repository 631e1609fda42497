/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package smb2

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildNegotiateRequestShape(t *testing.T) {
	pdu := BuildNegotiateRequest()
	require.Equal(t, byte(0), pdu[0], "NetBIOS header top byte must be zero")
	body := pdu[4+headerLen:]
	require.Equal(t, uint16(36), binary.LittleEndian.Uint16(body[0:2]))
	require.Equal(t, uint16(len(OfferedDialects)), binary.LittleEndian.Uint16(body[2:4]))
}

func TestParseNegotiateResponseRoundTrip(t *testing.T) {
	body := make([]byte, 64)
	binary.LittleEndian.PutUint16(body[4:6], 0x0311)
	copy(body[8:24], []byte("0123456789abcdef"))
	binary.LittleEndian.PutUint32(body[24:28], CapLargeMTU|CapEncryption)
	binary.LittleEndian.PutUint32(body[28:32], 8*1024*1024)
	binary.LittleEndian.PutUint32(body[32:36], 8*1024*1024)
	binary.LittleEndian.PutUint32(body[36:40], 8*1024*1024)

	hdr := encodeHeader(header{Command: CmdNegotiate, Status: StatusSuccess})
	pdu := append(hdr, body...)

	res, err := ParseNegotiateResponse(pdu)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0311), res.Dialect)
	require.Equal(t, uint32(CapLargeMTU|CapEncryption), res.Capabilities)
	require.Equal(t, uint32(8*1024*1024), res.MaxReadSize)
}

func TestParseNegotiateResponseErrorStatus(t *testing.T) {
	hdr := encodeHeader(header{Command: CmdNegotiate, Status: 0xC0000001})
	body := make([]byte, 64)
	_, err := ParseNegotiateResponse(append(hdr, body...))
	require.Error(t, err)
}

func TestCreateRequestResponseRoundTrip(t *testing.T) {
	req, err := BuildCreateRequest(1, 42, 7, "dir\\file.txt", AccessFileRead, 0, ShareAccessRead, DispositionOpen, OptionNonDirectoryFile)
	require.NoError(t, err)
	require.True(t, len(req) > 4+headerLen+56)

	respBody := make([]byte, 80)
	binary.LittleEndian.PutUint32(respBody[56:60], AttrArchive)
	binary.LittleEndian.PutUint64(respBody[48:56], 1024)
	var wantFID FileID
	for i := range wantFID {
		wantFID[i] = byte(i + 1)
	}
	copy(respBody[64:80], wantFID[:])
	hdr := encodeHeader(header{Command: CmdCreate, Status: StatusSuccess})
	res, err := ParseCreateResponse(append(hdr, respBody...))
	require.NoError(t, err)
	require.Equal(t, wantFID, res.FileID)
	require.Equal(t, uint64(1024), res.EndOfFile)
	require.True(t, res.FileAttributes&AttrArchive != 0)
}

func TestQueryDirectoryResponseFiltersDotEntries(t *testing.T) {
	entry := func(name string, isLast bool) []byte {
		nameU16 := make([]byte, len(name)*2)
		for i, r := range name {
			nameU16[i*2] = byte(r)
		}
		e := make([]byte, 64+len(nameU16))
		if !isLast {
			binary.LittleEndian.PutUint32(e[0:4], uint32(len(e)))
		}
		binary.LittleEndian.PutUint32(e[60:64], uint32(len(nameU16)))
		copy(e[64:], nameU16)
		return e
	}
	buf := append(entry(".", false), entry("..", false)...)
	buf = append(buf, entry("report.txt", true)...)

	body := make([]byte, 8+len(buf))
	binary.LittleEndian.PutUint16(body[0:2], 9)
	binary.LittleEndian.PutUint16(body[2:4], uint16(headerLen+8))
	binary.LittleEndian.PutUint32(body[4:8], uint32(len(buf)))
	copy(body[8:], buf)

	hdr := encodeHeader(header{Command: CmdQueryDirectory, Status: StatusSuccess})
	entries, err := ParseQueryDirectoryResponse(append(hdr, body...))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "report.txt", entries[0].Name)
}
