/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package bcodec holds the small endian-aware encode/decode helpers that
// every protocol codec in protocols/ builds request and response frames
// from: fixed-width integers, length-prefixed strings in several
// encodings, IPv4/IPv6 literals, and hex/base64 convenience wrappers.
package bcodec

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"net"

	"golang.org/x/text/encoding/unicode"
)

var ErrShortBuffer = errors.New("bcodec: buffer too short")

// --- fixed width integers ---

func PutU16BE(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func PutU32BE(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func PutU64BE(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }
func PutU16LE(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func PutU32LE(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func PutU64LE(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

func U16BE(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, ErrShortBuffer
	}
	return binary.BigEndian.Uint16(b), nil
}

func U32BE(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, ErrShortBuffer
	}
	return binary.BigEndian.Uint32(b), nil
}

func U64BE(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, ErrShortBuffer
	}
	return binary.BigEndian.Uint64(b), nil
}

func U16LE(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint16(b), nil
}

func U32LE(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(b), nil
}

func U64LE(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint64(b), nil
}

// U24BE reads a 3-byte big-endian unsigned integer, used for the SMB2
// NetBIOS length field and iSCSI BHS DataSegmentLength.
func U24BE(b []byte) (uint32, error) {
	if len(b) < 3 {
		return 0, ErrShortBuffer
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

func PutU24BE(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// --- strings ---

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeUTF16LE encodes s (e.g. an NTLM password or SMB2 path) as
// UTF-16LE, the encoding the wire formats in require.
func EncodeUTF16LE(s string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(s))
}

// DecodeUTF16LE decodes a UTF-16LE byte string back to UTF-8.
func DecodeUTF16LE(b []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ``, err
	}
	return string(out), nil
}

// NullTerminatedASCII reads an ASCII string up to (not including) the
// first 0x00 byte, or the whole buffer if no terminator is present.
func NullTerminatedASCII(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// --- IP literals ---

// ParseIPv4 parses a dotted-quad and returns its 4-byte big-endian form.
func ParseIPv4(s string) (net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, errors.New("bcodec: invalid IPv4 literal " + s)
	}
	v4 := ip.To4()
	if v4 == nil {
		return nil, errors.New("bcodec: not an IPv4 literal " + s)
	}
	return v4, nil
}

// FormatIPv4 renders a 4-byte big-endian address as dotted-quad.
func FormatIPv4(b []byte) (string, error) {
	if len(b) < 4 {
		return ``, ErrShortBuffer
	}
	return net.IP(b[:4]).String(), nil
}

// FormatIPv6 renders 16 bytes as 8 colon-separated, zero-padded 4-digit
// hex groups with no :: compression.
func FormatIPv6(b []byte) (string, error) {
	if len(b) < 16 {
		return ``, ErrShortBuffer
	}
	out := make([]byte, 0, 39)
	for i := 0; i < 16; i += 2 {
		if i > 0 {
			out = append(out, ':')
		}
		out = append(out, []byte(hex.EncodeToString(b[i:i+2]))...)
	}
	return string(out), nil
}

// --- hex / base64 ---

func HexEncode(b []byte) string { return hex.EncodeToString(b) }

func HexDecode(s string) ([]byte, error) { return hex.DecodeString(s) }

func Base64Encode(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func Base64Decode(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

// FILETIMEFromUnix converts a Unix time (seconds, nanoseconds) into a
// Windows FILETIME: 100ns intervals since 1601-01-01 UTC.
func FILETIMEFromUnix(sec int64, nsec int64) uint64 {
	const epochDiff = 116444736000000000 // 1601-01-01 to 1970-01-01, in 100ns units
	return uint64(sec*10000000+nsec/100) + epochDiff
}

// UnixFromFILETIME is the inverse of FILETIMEFromUnix.
func UnixFromFILETIME(ft uint64) (sec int64, nsec int64) {
	const epochDiff = 116444736000000000
	ticks := int64(ft) - epochDiff
	sec = ticks / 10000000
	nsec = (ticks % 10000000) * 100
	return
}
