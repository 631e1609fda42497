/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package ignite

import (
	"encoding/binary"
	"math"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// Tagged value type codes, matching Ignite's binary client protocol.
const (
	TypeByte   byte = 1
	TypeShort  byte = 2
	TypeInt    byte = 3
	TypeLong   byte = 4
	TypeFloat  byte = 5
	TypeDouble byte = 6
	TypeChar   byte = 7
	TypeBool   byte = 8
	TypeString byte = 9
	TypeNull   byte = 101
)

// Thin client operation codes, matching Ignite's documented binary
// client protocol op code table.
const (
	OpCacheGet       int16 = 1000
	OpCachePut       int16 = 1001
	OpCacheContains  int16 = 1002
	OpCacheGetNames  int16 = 1050
)

// CacheID hashes a cache name the way the Ignite thin client protocol
// requires: Java's String.hashCode over UTF-16 code units, per spec
// §4.4.8 ("h = 31*h + codeUnit").
func CacheID(name string) int32 {
	var h int32
	for _, r := range utf16Units(name) {
		h = 31*h + int32(r)
	}
	return h
}

// utf16Units renders s as UTF-16 code units (surrogate pairs for
// characters outside the BMP), matching Java's char semantics.
func utf16Units(s string) []uint16 {
	var out []uint16
	for _, r := range s {
		if r <= 0xFFFF {
			out = append(out, uint16(r))
			continue
		}
		r -= 0x10000
		out = append(out, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
	}
	return out
}

// encodeTaggedString writes type=9, i32 LE length, then the UTF-8 bytes.
func encodeTaggedString(s string) []byte {
	out := make([]byte, 1+4+len(s))
	out[0] = TypeString
	binary.LittleEndian.PutUint32(out[1:5], uint32(len(s)))
	copy(out[5:], s)
	return out
}

func encodeTaggedInt(v int32) []byte {
	out := make([]byte, 5)
	out[0] = TypeInt
	binary.LittleEndian.PutUint32(out[1:5], uint32(v))
	return out
}

// TaggedValue is a decoded response value: Kind is one of the Type*
// constants and Value holds its Go-native rendering (string, int16,
// int32, int64, float32, float64, bool, byte, nil for TypeNull).
type TaggedValue struct {
	Kind  byte
	Value interface{}
}

func decodeTaggedValue(b []byte) (*TaggedValue, int, error) {
	if len(b) < 1 {
		return nil, 0, ecode.New(ecode.ShortRead, "ignite: missing value type tag")
	}
	kind := b[0]
	switch kind {
	case TypeNull:
		return &TaggedValue{Kind: kind}, 1, nil
	case TypeByte:
		if len(b) < 2 {
			return nil, 0, ecode.New(ecode.ShortRead, "ignite: truncated byte value")
		}
		return &TaggedValue{Kind: kind, Value: b[1]}, 2, nil
	case TypeBool:
		if len(b) < 2 {
			return nil, 0, ecode.New(ecode.ShortRead, "ignite: truncated bool value")
		}
		return &TaggedValue{Kind: kind, Value: b[1] != 0}, 2, nil
	case TypeShort, TypeChar:
		if len(b) < 3 {
			return nil, 0, ecode.New(ecode.ShortRead, "ignite: truncated short value")
		}
		return &TaggedValue{Kind: kind, Value: int16(binary.LittleEndian.Uint16(b[1:3]))}, 3, nil
	case TypeInt:
		if len(b) < 5 {
			return nil, 0, ecode.New(ecode.ShortRead, "ignite: truncated int value")
		}
		return &TaggedValue{Kind: kind, Value: int32(binary.LittleEndian.Uint32(b[1:5]))}, 5, nil
	case TypeLong:
		if len(b) < 9 {
			return nil, 0, ecode.New(ecode.ShortRead, "ignite: truncated long value")
		}
		return &TaggedValue{Kind: kind, Value: int64(binary.LittleEndian.Uint64(b[1:9]))}, 9, nil
	case TypeFloat:
		if len(b) < 5 {
			return nil, 0, ecode.New(ecode.ShortRead, "ignite: truncated float value")
		}
		return &TaggedValue{Kind: kind, Value: math.Float32frombits(binary.LittleEndian.Uint32(b[1:5]))}, 5, nil
	case TypeDouble:
		if len(b) < 9 {
			return nil, 0, ecode.New(ecode.ShortRead, "ignite: truncated double value")
		}
		return &TaggedValue{Kind: kind, Value: math.Float64frombits(binary.LittleEndian.Uint64(b[1:9]))}, 9, nil
	case TypeString:
		if len(b) < 5 {
			return nil, 0, ecode.New(ecode.ShortRead, "ignite: truncated string length")
		}
		l := int(binary.LittleEndian.Uint32(b[1:5]))
		if l < 0 || 5+l > len(b) {
			return nil, 0, ecode.New(ecode.Malformed, "ignite: string length out of range")
		}
		return &TaggedValue{Kind: kind, Value: string(b[5 : 5+l])}, 5 + l, nil
	default:
		return nil, 0, ecode.New(ecode.Malformed, "ignite: unsupported value type tag")
	}
}
