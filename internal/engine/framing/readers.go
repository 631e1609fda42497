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

	"github.com/rossgg/portofcall/internal/engine/bcodec"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// ReadExactly returns exactly n bytes, discarding none and leaving any
// surplus buffered for the next reader.
func (r *Reader) ReadExactly(n int) ([]byte, error) {
	if err := r.fill(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[:n])
	r.buf = r.buf[n:]
	return out, nil
}

// ReadUntil returns the bytes up to and including the first occurrence of
// delim. Common delimiters: "\r\n", "\r\n\r\n", "\r\n.\r\n", 0x1C (MLLP
// FS), {0x1C, 0x0D} (MLLP trailer).
func (r *Reader) ReadUntil(delim []byte) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ecode.New(ecode.Malformed, "framing: empty delimiter")
	}
	return r.growUntil(func(buf []byte) (bool, int) {
		idx := bytes.Index(buf, delim)
		if idx < 0 {
			return false, 0
		}
		return true, idx + len(delim)
	})
}

// ReadLine returns one "\r\n"-terminated line with the delimiter
// stripped.
func (r *Reader) ReadLine() (string, error) {
	b, err := r.ReadUntil([]byte("\r\n"))
	if err != nil {
		return ``, err
	}
	return string(b[:len(b)-2]), nil
}

// ReadU16BELengthPrefixed reads a 2-byte big-endian length followed by
// that many bytes (EPMD PORT_PLEASE2, DNS-over-TCP, the RADIUS length
// field read out-of-band at offset 2).
func (r *Reader) ReadU16BELengthPrefixed(maxLen int) ([]byte, error) {
	hdr, err := r.ReadExactly(2)
	if err != nil {
		return nil, err
	}
	n, _ := bcodec.U16BE(hdr)
	if maxLen > 0 && int(n) > maxLen {
		return nil, ecode.New(ecode.LimitExceeded, "framing: announced length exceeds cap")
	}
	return r.ReadExactly(int(n))
}

// ReadU32BELengthPrefixed reads a 4-byte big-endian length followed by
// that many bytes (SMB2 NetBIOS-ish framing reused for Thrift framed
// transport, Ignite handshake, BGP-like length prefixes).
func (r *Reader) ReadU32BELengthPrefixed(maxLen int) ([]byte, error) {
	hdr, err := r.ReadExactly(4)
	if err != nil {
		return nil, err
	}
	n, _ := bcodec.U32BE(hdr)
	if maxLen > 0 && int(n) > maxLen {
		return nil, ecode.New(ecode.LimitExceeded, "framing: announced length exceeds cap")
	}
	return r.ReadExactly(int(n))
}

// ReadU32LELengthPrefixed reads a 4-byte little-endian length followed by
// that many bytes (Ignite thin-client operations).
func (r *Reader) ReadU32LELengthPrefixed(maxLen int) ([]byte, error) {
	hdr, err := r.ReadExactly(4)
	if err != nil {
		return nil, err
	}
	n, _ := bcodec.U32LE(hdr)
	if maxLen > 0 && int(n) > maxLen {
		return nil, ecode.New(ecode.LimitExceeded, "framing: announced length exceeds cap")
	}
	return r.ReadExactly(int(n))
}

// ReadU16LE reads a 16-bit little-endian integer without any following
// payload.
func (r *Reader) ReadU16LE() (uint16, error) {
	b, err := r.ReadExactly(2)
	if err != nil {
		return 0, err
	}
	v, _ := bcodec.U16LE(b)
	return v, nil
}

// ReadUntilClose accumulates bytes until the peer closes the connection
// (EOF) or the cap is reached, for protocols whose only termination rule
// is "read until close" (EPMD NAMES, HTTP read-until-close bodies).
func (r *Reader) ReadUntilClose() ([]byte, error) {
	return r.growUntil(func(buf []byte) (bool, int) {
		return r.eof, len(buf)
	})
}
