/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package amqp091

import (
	"encoding/binary"
	"strconv"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// encodeMethodFrame wraps a class/method payload in the AMQP 0-9-1
// frame envelope: type(1) channel(2) size(4) payload size(N) frame-end(1).
func encodeMethodFrame(class, method uint16, args []byte) []byte {
	payload := make([]byte, 4+len(args))
	binary.BigEndian.PutUint16(payload[0:2], class)
	binary.BigEndian.PutUint16(payload[2:4], method)
	copy(payload[4:], args)

	out := make([]byte, 7+len(payload)+1)
	out[0] = frameMethod
	binary.BigEndian.PutUint16(out[1:3], 0) // channel 0
	binary.BigEndian.PutUint32(out[3:7], uint32(len(payload)))
	copy(out[7:], payload)
	out[len(out)-1] = frameEnd
	return out
}

// encodeConnectionStartOk builds a connection.start-ok method with an
// empty client-properties table, PLAIN mechanism, a SASL PLAIN response
// ("\0user\0password"), and the "en_US" locale.
func encodeConnectionStartOk(username, password string) []byte {
	var args []byte
	args = append(args, encodeFieldTable(nil)...)
	args = append(args, encodeShortString("PLAIN")...)
	response := "\x00" + username + "\x00" + password
	args = append(args, encodeLongStringBytes([]byte(response))...)
	args = append(args, encodeShortString("en_US")...)
	return encodeMethodFrame(classConnection, methodConnectionStartOk, args)
}

func encodeShortString(s string) []byte {
	out := make([]byte, 1+len(s))
	out[0] = byte(len(s))
	copy(out[1:], s)
	return out
}

func encodeLongStringBytes(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(b)))
	copy(out[4:], b)
	return out
}

// encodeFieldTable encodes an empty or flat string-valued field table;
// sufficient for the client-properties argument this probe sends (the
// server is not expected to inspect it).
func encodeFieldTable(fields map[string]string) []byte {
	var body []byte
	for k, v := range fields {
		body = append(body, encodeShortString(k)...)
		body = append(body, 'S')
		body = append(body, encodeLongStringBytes([]byte(v))...)
	}
	return encodeLongStringBytes(body)
}

func decodeShortString(b []byte) (string, []byte, error) {
	if len(b) < 1 {
		return ``, nil, ecode.New(ecode.Malformed, "amqp091: truncated short-string length")
	}
	n := int(b[0])
	if len(b) < 1+n {
		return ``, nil, ecode.New(ecode.Malformed, "amqp091: truncated short-string body")
	}
	return string(b[1 : 1+n]), b[1+n:], nil
}

func decodeLongString(b []byte) (string, []byte, error) {
	if len(b) < 4 {
		return ``, nil, ecode.New(ecode.Malformed, "amqp091: truncated long-string length")
	}
	n := int(binary.BigEndian.Uint32(b[0:4]))
	if len(b) < 4+n {
		return ``, nil, ecode.New(ecode.Malformed, "amqp091: truncated long-string body")
	}
	return string(b[4 : 4+n]), b[4+n:], nil
}

// decodeFieldTable decodes a server-properties field table into a flat
// string map: numeric/boolean/nested-table values are rendered with
// fmt-free best-effort text so the probe result stays JSON-simple; this
// is a probe, not a full field-table codec.
func decodeFieldTable(b []byte) (map[string]string, []byte, error) {
	if len(b) < 4 {
		return nil, nil, ecode.New(ecode.Malformed, "amqp091: truncated field-table length")
	}
	n := int(binary.BigEndian.Uint32(b[0:4]))
	if len(b) < 4+n {
		return nil, nil, ecode.New(ecode.Malformed, "amqp091: truncated field-table body")
	}
	body := b[4 : 4+n]
	rest := b[4+n:]

	out := make(map[string]string)
	for len(body) > 0 {
		key, next, err := decodeShortString(body)
		if err != nil {
			return nil, nil, err
		}
		body = next
		if len(body) < 1 {
			return nil, nil, ecode.New(ecode.Malformed, "amqp091: missing field-table value type")
		}
		typ := body[0]
		body = body[1:]
		val, next2, err := decodeFieldValue(typ, body)
		if err != nil {
			return nil, nil, err
		}
		body = next2
		out[key] = val
	}
	return out, rest, nil
}

// decodeFieldValue decodes one AMQP 0-9-1 field-table value by its type
// octet, returning only the subset of types server-properties actually
// uses (S longstr, t bool, I int32, F nested table); any other type
// octet fails the decode with MALFORMED.
func decodeFieldValue(typ byte, b []byte) (string, []byte, error) {
	switch typ {
	case 'S':
		return decodeLongString(b)
	case 't':
		if len(b) < 1 {
			return ``, nil, ecode.New(ecode.Malformed, "amqp091: truncated bool field")
		}
		if b[0] != 0 {
			return "true", b[1:], nil
		}
		return "false", b[1:], nil
	case 'I':
		if len(b) < 4 {
			return ``, nil, ecode.New(ecode.Malformed, "amqp091: truncated int field")
		}
		return strconv.Itoa(int(int32(binary.BigEndian.Uint32(b[0:4])))), b[4:], nil
	case 'F':
		_, rest, err := decodeFieldTable(b)
		if err != nil {
			return ``, nil, err
		}
		return "<table>", rest, nil
	default:
		return ``, nil, ecode.New(ecode.Malformed, "amqp091: unsupported field-table value type '"+string(typ)+"'")
	}
}
