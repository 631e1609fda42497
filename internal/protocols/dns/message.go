/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package dns is the hand-rolled DNS message codec the DoT and DoH
// probes share. It deliberately does not use a full-featured DNS
// library: it encodes exactly one query shape and decodes exactly the
// RR types this gateway needs to report, matching the documented
// quirks (no txid verification, no EDNS0, a bounded
// pointer-compression walk).
package dns

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/rossgg/portofcall/internal/engine/ecode"
)

const (
	flagsStandardQuery uint16 = 0x0100
	maxLabelLen               = 63
	maxPointerJumps           = 128
)

// RRType values this codec decodes.
const (
	TypeA     uint16 = 1
	TypeNS    uint16 = 2
	TypeCNAME uint16 = 5
	TypeSOA   uint16 = 6
	TypePTR   uint16 = 12
	TypeMX    uint16 = 15
	TypeTXT   uint16 = 16
	TypeAAAA  uint16 = 28
	TypeSRV   uint16 = 33
	ClassIN   uint16 = 1
)

// BuildQuery encodes a single-question DNS query: random 16-bit txid,
// flags 0x0100 (RD set), QDCOUNT=1, all other counts 0.
func BuildQuery(name string, qtype uint16) ([]byte, error) {
	encodedName, err := encodeName(name)
	if err != nil {
		return nil, err
	}
	var txidBuf [2]byte
	if _, err := rand.Read(txidBuf[:]); err != nil {
		return nil, ecode.Wrap(ecode.Internal, err)
	}

	out := make([]byte, 12)
	copy(out[0:2], txidBuf[:])
	binary.BigEndian.PutUint16(out[2:4], flagsStandardQuery)
	binary.BigEndian.PutUint16(out[4:6], 1) // QDCOUNT

	out = append(out, encodedName...)
	qend := make([]byte, 4)
	binary.BigEndian.PutUint16(qend[0:2], qtype)
	binary.BigEndian.PutUint16(qend[2:4], ClassIN)
	out = append(out, qend...)
	return out, nil
}

// encodeName renders a dotted hostname as a sequence of len+label
// bytes terminated by a zero root label.
func encodeName(name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".")
	var out []byte
	if name != "" {
		for _, label := range strings.Split(name, ".") {
			if len(label) == 0 || len(label) > maxLabelLen {
				return nil, ecode.New(ecode.Validation, "dns: label length out of range")
			}
			out = append(out, byte(len(label)))
			out = append(out, label...)
		}
	}
	out = append(out, 0)
	return out, nil
}

// FrameQuery adds the 2-byte big-endian length prefix DNS-over-TCP/TLS
// transport requires.
func FrameQuery(msg []byte) []byte {
	out := make([]byte, 2+len(msg))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(msg)))
	copy(out[2:], msg)
	return out
}

// Record is one decoded resource record. Data holds the type-specific
// rendering (a string, or an *MXRecord / *SOARecord / *SRVRecord for
// the structured types); other types keep their raw rdata bytes.
type Record struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  interface{}
}

// MXRecord is the decoded MX rdata (priority + name).
type MXRecord struct {
	Priority uint16
	Name     string
}

// SOARecord carries only the first three fields.
type SOARecord struct {
	MName  string
	RName  string
	Serial uint32
}

// SRVRecord is the decoded SRV rdata.
type SRVRecord struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

// Message is a decoded DNS response: header counts plus the answer
// section, which is all probes inspect.
type Message struct {
	TxID      uint16
	Flags     uint16
	QDCount   uint16
	ANCount   uint16
	NSCount   uint16
	ARCount   uint16
	Questions []Question
	Answers   []Record
}

// Question is one decoded question-section entry.
type Question struct {
	Name  string
	Type  uint16
	Class uint16
}

// DecodeMessage parses a full DNS message, including name-compression
// pointers in the question and answer sections. Transaction ID is
// returned but never checked against the query's txid, a documented
// quirk.
func DecodeMessage(b []byte) (*Message, error) {
	if len(b) < 12 {
		return nil, ecode.New(ecode.ShortRead, "dns: message shorter than header")
	}
	m := &Message{
		TxID:    binary.BigEndian.Uint16(b[0:2]),
		Flags:   binary.BigEndian.Uint16(b[2:4]),
		QDCount: binary.BigEndian.Uint16(b[4:6]),
		ANCount: binary.BigEndian.Uint16(b[6:8]),
		NSCount: binary.BigEndian.Uint16(b[8:10]),
		ARCount: binary.BigEndian.Uint16(b[10:12]),
	}
	off := 12
	for i := 0; i < int(m.QDCount); i++ {
		name, n, err := decodeName(b, off)
		if err != nil {
			return nil, err
		}
		off = n
		if off+4 > len(b) {
			return nil, ecode.New(ecode.ShortRead, "dns: truncated question")
		}
		m.Questions = append(m.Questions, Question{
			Name:  name,
			Type:  binary.BigEndian.Uint16(b[off : off+2]),
			Class: binary.BigEndian.Uint16(b[off+2 : off+4]),
		})
		off += 4
	}
	for i := 0; i < int(m.ANCount); i++ {
		rec, n, err := decodeRR(b, off)
		if err != nil {
			return nil, err
		}
		off = n
		m.Answers = append(m.Answers, *rec)
	}
	return m, nil
}

func decodeRR(b []byte, off int) (*Record, int, error) {
	name, off, err := decodeName(b, off)
	if err != nil {
		return nil, 0, err
	}
	if off+10 > len(b) {
		return nil, 0, ecode.New(ecode.ShortRead, "dns: truncated RR header")
	}
	typ := binary.BigEndian.Uint16(b[off : off+2])
	class := binary.BigEndian.Uint16(b[off+2 : off+4])
	ttl := binary.BigEndian.Uint32(b[off+4 : off+8])
	rdlen := int(binary.BigEndian.Uint16(b[off+8 : off+10]))
	off += 10
	if off+rdlen > len(b) {
		return nil, 0, ecode.New(ecode.ShortRead, "dns: truncated rdata")
	}
	end := off + rdlen

	data, err := decodeRData(b, off, rdlen, typ)
	if err != nil {
		return nil, 0, err
	}
	return &Record{Name: name, Type: typ, Class: class, TTL: ttl, Data: data}, end, nil
}

func decodeRData(b []byte, off, rdlen int, typ uint16) (interface{}, error) {
	rdata := b[off : off+rdlen]
	switch typ {
	case TypeA:
		if rdlen != 4 {
			return nil, ecode.New(ecode.Malformed, "dns: A record rdata must be 4 bytes")
		}
		return fmt.Sprintf("%d.%d.%d.%d", rdata[0], rdata[1], rdata[2], rdata[3]), nil
	case TypeAAAA:
		if rdlen != 16 {
			return nil, ecode.New(ecode.Malformed, "dns: AAAA record rdata must be 16 bytes")
		}
		groups := make([]string, 8)
		for i := 0; i < 8; i++ {
			groups[i] = fmt.Sprintf("%x", binary.BigEndian.Uint16(rdata[i*2:i*2+2]))
		}
		return strings.Join(groups, ":"), nil
	case TypeNS, TypeCNAME, TypePTR:
		name, _, err := decodeName(b, off)
		return name, err
	case TypeMX:
		if rdlen < 3 {
			return nil, ecode.New(ecode.Malformed, "dns: MX record rdata too short")
		}
		name, _, err := decodeName(b, off+2)
		if err != nil {
			return nil, err
		}
		return &MXRecord{Priority: binary.BigEndian.Uint16(rdata[0:2]), Name: name}, nil
	case TypeSOA:
		mname, next, err := decodeName(b, off)
		if err != nil {
			return nil, err
		}
		rname, next, err := decodeName(b, next)
		if err != nil {
			return nil, err
		}
		if next+4 > len(b) {
			return nil, ecode.New(ecode.ShortRead, "dns: truncated SOA serial")
		}
		serial := binary.BigEndian.Uint32(b[next : next+4])
		return &SOARecord{MName: mname, RName: rname, Serial: serial}, nil
	case TypeSRV:
		if rdlen < 7 {
			return nil, ecode.New(ecode.Malformed, "dns: SRV record rdata too short")
		}
		target, _, err := decodeName(b, off+6)
		if err != nil {
			return nil, err
		}
		return &SRVRecord{
			Priority: binary.BigEndian.Uint16(rdata[0:2]),
			Weight:   binary.BigEndian.Uint16(rdata[2:4]),
			Port:     binary.BigEndian.Uint16(rdata[4:6]),
			Target:   target,
		}, nil
	case TypeTXT:
		var sb strings.Builder
		i := 0
		for i < len(rdata) {
			l := int(rdata[i])
			i++
			if i+l > len(rdata) {
				return nil, ecode.New(ecode.Malformed, "dns: TXT character-string length out of range")
			}
			sb.Write(rdata[i : i+l])
			i += l
		}
		return sb.String(), nil
	default:
		return rdata, nil
	}
}

// decodeName decodes a (possibly compressed) name starting at off,
// returning the dotted name and the offset immediately after it in the
// original message (not following any pointer). Pointer chains longer
// than maxPointerJumps fail with MALFORMED, per the spec's
// negative-scenario table.
func decodeName(b []byte, off int) (string, int, error) {
	var labels []string
	jumps := 0
	pos := off
	endPos := -1
	for {
		if pos >= len(b) {
			return "", 0, ecode.New(ecode.ShortRead, "dns: truncated name")
		}
		lenByte := b[pos]
		if lenByte == 0 {
			pos++
			if endPos == -1 {
				endPos = pos
			}
			break
		}
		if lenByte&0xC0 == 0xC0 {
			if pos+1 >= len(b) {
				return "", 0, ecode.New(ecode.ShortRead, "dns: truncated name pointer")
			}
			jumps++
			if jumps > maxPointerJumps {
				return "", 0, ecode.New(ecode.Malformed, "dns: name pointer chain too long")
			}
			ptr := int(binary.BigEndian.Uint16(b[pos:pos+2]) & 0x3FFF)
			if endPos == -1 {
				endPos = pos + 2
			}
			pos = ptr
			continue
		}
		if lenByte > maxLabelLen {
			return "", 0, ecode.New(ecode.Malformed, "dns: label length out of range")
		}
		start := pos + 1
		end := start + int(lenByte)
		if end > len(b) {
			return "", 0, ecode.New(ecode.ShortRead, "dns: truncated label")
		}
		labels = append(labels, string(b[start:end]))
		pos = end
	}
	return strings.Join(labels, "."), endPos, nil
}
