/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package hl7

import (
	"fmt"
	"strings"
)

const encodingChars = `^~\&`

// BuildParams are the caller-supplied MSH fields for an outbound message.
type BuildParams struct {
	SendingApp        string
	SendingFacility   string
	ReceivingApp      string
	ReceivingFacility string
	Timestamp         string
	MessageType       string // e.g. "ORU^R01", "ADT^A08"
	ControlID         string
	ProcessingID      string // default "P"
	Version           string // default "2.3"
}

func (p BuildParams) defaults() BuildParams {
	if p.ProcessingID == `` {
		p.ProcessingID = "P"
	}
	if p.Version == `` {
		p.Version = "2.3"
	}
	if p.ControlID == `` {
		p.ControlID = "PORTOFCALL0001"
	}
	return p
}

// BuildMessage renders an MSH segment plus one body segment appropriate
// to MessageType., any
// MessageType other than "ORU^R01" falls through to building an ADT^A01
// body — including values that merely look like other ADT triggers.
func BuildMessage(p BuildParams) string {
	p = p.defaults()
	msh := fmt.Sprintf("MSH|%s|%s|%s|%s|%s|%s||%s|%s|%s|%s",
		encodingChars, p.SendingApp, p.SendingFacility, p.ReceivingApp,
		p.ReceivingFacility, p.Timestamp, p.MessageType, p.ControlID,
		p.ProcessingID, p.Version)

	var body string
	switch p.MessageType {
	case "ORU^R01":
		body = "PID|1||000001||DOE^JOHN||19700101|M\r" +
			"OBR|1|||CBC^Complete Blood Count\r" +
			"OBX|1|NM|WBC^White Blood Count||7.5|10*3/uL|4.0-11.0|N"
	default:
		body = "EVN|A01|" + p.Timestamp + "\r" +
			"PID|1||000001||DOE^JOHN||19700101|M"
	}
	return msh + "\r" + body
}

// MSHFields is the parsed MSH segment of an HL7 message.
type MSHFields struct {
	SendingApp        string
	SendingFacility   string
	ReceivingApp      string
	ReceivingFacility string
	Timestamp         string
	MessageType       string
	TriggerEvent      string
	ControlID         string
	ProcessingID      string
	Version           string
}

// Ack is the parsed MSA segment of an ACK response.
type Ack struct {
	AckCode string
	AckText string
}

// ParsedMessage is the full decoded response.
type ParsedMessage struct {
	MSH MSHFields
	Ack *Ack
}

// ParseMessage splits the raw HL7 text on segment and field boundaries
// and extracts MSH and, if present, MSA fields.
func ParseMessage(raw string) (*ParsedMessage, error) {
	var segments []string
	for _, line := range strings.Split(raw, "\r") {
		if line != `` {
			segments = append(segments, line)
		}
	}
	if len(segments) == 0 {
		return nil, errEmptyMessage()
	}

	parts := strings.Split(segments[0], "|")
	if len(parts) < 1 || parts[0] != "MSH" {
		return nil, errNotMSH()
	}
	// MSH-1 is the separator character itself; fields[0] is MSH-2.
	fields := parts[1:]
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ``
	}
	msgType := field(7)
	msgTypeParts := strings.SplitN(msgType, "^", 2)
	msh := MSHFields{
		SendingApp:        field(1),
		SendingFacility:   field(2),
		ReceivingApp:      field(3),
		ReceivingFacility: field(4),
		Timestamp:         field(5),
		MessageType:       msgTypeParts[0],
		ControlID:         field(8),
		ProcessingID:      field(9),
		Version:           field(10),
	}
	if len(msgTypeParts) > 1 {
		msh.TriggerEvent = msgTypeParts[1]
	}

	out := &ParsedMessage{MSH: msh}
	for _, seg := range segments {
		if !strings.HasPrefix(seg, "MSA|") {
			continue
		}
		msaFields := strings.Split(seg, "|")[1:]
		msaField := func(i int) string {
			if i < len(msaFields) {
				return msaFields[i]
			}
			return ``
		}
		out.Ack = &Ack{
			AckCode: msaField(0),
			AckText: msaField(2), // MSA-3, not MSA-2
		}
		break
	}
	return out, nil
}
