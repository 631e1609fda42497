/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package thrift

import (
	"encoding/binary"
	"math"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// Message types, per the Binary Protocol v1 versionAndType field.
const (
	MsgCall      int32 = 1
	MsgReply     int32 = 2
	MsgException int32 = 3
	MsgOneway    int32 = 4
)

const versionMask = int32(-0x7fff0000) // bit pattern 0x80010000

// Field types
const (
	TypeStop   byte = 0
	TypeBool   byte = 2
	TypeByte   byte = 3
	TypeDouble byte = 4
	TypeI16    byte = 6
	TypeI32    byte = 8
	TypeI64    byte = 10
	TypeString byte = 11
	TypeStruct byte = 12
	TypeMap    byte = 13
	TypeSet    byte = 14
	TypeList   byte = 15
)

const responseCap = 1024 * 1024

// field is one decoded struct field. Value holds the Go-native
// representation for the scalar/string types this codec understands;
// containers are decoded up to maxFields elements and nested structs are
// skipped rather than decoded (see decodeValue).
type field struct {
	Type byte
	ID   int16
	Value interface{}
}

// encodeMessage builds a full Thrift Binary Protocol v1 message:
// versionAndType, methodName, seqId, then the struct body.
func encodeMessage(msgType int32, method string, seqID int32, fields []field) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(versionMask|(msgType&0xff)))
	out = appendString(out, method)
	seq := make([]byte, 4)
	binary.BigEndian.PutUint32(seq, uint32(seqID))
	out = append(out, seq...)
	out = append(out, encodeStructBody(fields)...)
	return out
}

func appendString(out []byte, s string) []byte {
	l := make([]byte, 4)
	binary.BigEndian.PutUint32(l, uint32(len(s)))
	out = append(out, l...)
	return append(out, s...)
}

// encodeStructBody writes [fieldType fieldId(i16 BE) value]... stopByte.
// Only scalar types and STRING are supported on the write side
// ("Writer supports scalars and STRING").
func encodeStructBody(fields []field) []byte {
	var out []byte
	for _, f := range fields {
		out = append(out, f.Type)
		id := make([]byte, 2)
		binary.BigEndian.PutUint16(id, uint16(f.ID))
		out = append(out, id...)
		out = append(out, encodeValue(f.Type, f.Value)...)
	}
	out = append(out, TypeStop)
	return out
}

func encodeValue(typ byte, v interface{}) []byte {
	switch typ {
	case TypeBool:
		if v.(bool) {
			return []byte{1}
		}
		return []byte{0}
	case TypeByte:
		return []byte{byte(v.(int8))}
	case TypeI16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(v.(int16)))
		return b
	case TypeI32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v.(int32)))
		return b
	case TypeI64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(v.(int64)))
		return b
	case TypeDouble:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, math.Float64bits(v.(float64)))
		return b
	case TypeString:
		return appendString(nil, v.(string))
	default:
		return nil
	}
}

// decodedMessage is a parsed reply/exception/call message.
type decodedMessage struct {
	MsgType int32
	Method  string
	SeqID   int32
	Fields  []field
}

func decodeMessage(b []byte) (*decodedMessage, error) {
	if len(b) < 8 {
		return nil, ecode.New(ecode.ShortRead, "thrift: message shorter than header")
	}
	vt := int32(binary.BigEndian.Uint32(b[0:4]))
	if vt&versionMask != versionMask {
		return nil, ecode.New(ecode.Malformed, "thrift: bad version/type marker")
	}
	msgType := vt & 0xff
	off := 4
	methodLen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if methodLen < 0 || off+methodLen > len(b) {
		return nil, ecode.New(ecode.Malformed, "thrift: method name length out of range")
	}
	method := string(b[off : off+methodLen])
	off += methodLen
	if off+4 > len(b) {
		return nil, ecode.New(ecode.ShortRead, "thrift: truncated seqId")
	}
	seqID := int32(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4

	fields, _, err := decodeStructBody(b[off:])
	if err != nil {
		return nil, err
	}
	return &decodedMessage{MsgType: msgType, Method: method, SeqID: seqID, Fields: fields}, nil
}

// maxFields is the documented container-parsing cap on decoded
// MAP/SET/LIST elements (spec §4.4.8).
const maxFields = 20

// nestedStructSkip is the fixed byte count a nested STRUCT value
// advances the offset by:
// nested structs are not recursively decoded, just skipped.
const nestedStructSkip = 100

// decodeStructBody parses [fieldType fieldId value]... stopByte,
// returning the decoded fields and the number of bytes consumed.
// Containers (MAP/SET/LIST) and nested STRUCTs aren't fully decoded:
// a STRUCT field advances by a fixed 100 bytes and containers are
// capped at 20 elements, matching the documented limitation.
func decodeStructBody(b []byte) ([]field, int, error) {
	var fields []field
	off := 0
	count := 0
	for {
		if off >= len(b) {
			return nil, off, ecode.New(ecode.ShortRead, "thrift: struct body missing stop byte")
		}
		typ := b[off]
		off++
		if typ == TypeStop {
			return fields, off, nil
		}
		count++
		if count > maxFields {
			return nil, off, ecode.New(ecode.LimitExceeded, "thrift: struct exceeds field cap")
		}
		if off+2 > len(b) {
			return nil, off, ecode.New(ecode.ShortRead, "thrift: truncated field id")
		}
		id := int16(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2

		val, n, err := decodeValue(typ, b[off:])
		if err != nil {
			return nil, off, err
		}
		off += n
		fields = append(fields, field{Type: typ, ID: id, Value: val})
	}
}

func decodeValue(typ byte, b []byte) (interface{}, int, error) {
	switch typ {
	case TypeBool:
		if len(b) < 1 {
			return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated bool")
		}
		return b[0] != 0, 1, nil
	case TypeByte:
		if len(b) < 1 {
			return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated byte")
		}
		return int8(b[0]), 1, nil
	case TypeI16:
		if len(b) < 2 {
			return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated i16")
		}
		return int16(binary.BigEndian.Uint16(b[:2])), 2, nil
	case TypeI32:
		if len(b) < 4 {
			return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated i32")
		}
		return int32(binary.BigEndian.Uint32(b[:4])), 4, nil
	case TypeI64:
		if len(b) < 8 {
			return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated i64")
		}
		return int64(binary.BigEndian.Uint64(b[:8])), 8, nil
	case TypeDouble:
		if len(b) < 8 {
			return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated double")
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b[:8])), 8, nil
	case TypeString:
		if len(b) < 4 {
			return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated string length")
		}
		l := int(binary.BigEndian.Uint32(b[:4]))
		if l < 0 || 4+l > len(b) {
			return nil, 0, ecode.New(ecode.Malformed, "thrift: string length out of range")
		}
		return string(b[4 : 4+l]), 4 + l, nil
	case TypeStruct:
		if nestedStructSkip > len(b) {
			return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated nested struct")
		}
		return nil, nestedStructSkip, nil
	case TypeList, TypeSet:
		return decodeListOrSet(b)
	case TypeMap:
		return decodeMap(b)
	default:
		return nil, 0, ecode.New(ecode.Malformed, "thrift: unknown field type")
	}
}

// decodeListOrSet parses `elemType(1) size(i32 BE) elem...`, capped at
// maxFields elements (the documented 20-element cap). Remaining
// elements beyond the cap are skipped by continuing to advance the
// offset so later struct fields still parse correctly.
func decodeListOrSet(b []byte) (interface{}, int, error) {
	if len(b) < 5 {
		return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated list/set header")
	}
	elemType := b[0]
	size := int(int32(binary.BigEndian.Uint32(b[1:5])))
	if size < 0 {
		return nil, 0, ecode.New(ecode.Malformed, "thrift: negative list/set size")
	}
	off := 5
	var elems []interface{}
	for i := 0; i < size; i++ {
		v, n, err := decodeValue(elemType, b[off:])
		if err != nil {
			return nil, off, err
		}
		off += n
		if i < maxFields {
			elems = append(elems, v)
		}
	}
	return elems, off, nil
}

// decodeMap parses `keyType(1) valType(1) size(i32 BE) (key value)...`,
// same element cap as decodeListOrSet.
func decodeMap(b []byte) (interface{}, int, error) {
	if len(b) < 6 {
		return nil, 0, ecode.New(ecode.ShortRead, "thrift: truncated map header")
	}
	keyType, valType := b[0], b[1]
	size := int(int32(binary.BigEndian.Uint32(b[2:6])))
	if size < 0 {
		return nil, 0, ecode.New(ecode.Malformed, "thrift: negative map size")
	}
	off := 6
	pairs := make(map[interface{}]interface{})
	for i := 0; i < size; i++ {
		k, n, err := decodeValue(keyType, b[off:])
		if err != nil {
			return nil, off, err
		}
		off += n
		v, n, err := decodeValue(valType, b[off:])
		if err != nil {
			return nil, off, err
		}
		off += n
		if i < maxFields {
			pairs[k] = v
		}
	}
	return pairs, off, nil
}
