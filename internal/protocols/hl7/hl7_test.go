/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package hl7

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapMLLPFraming(t *testing.T) {
	framed := wrapMLLP([]byte("MSH|^~\\&|A"))
	assert.Equal(t, byte(startBlock), framed[0])
	assert.Equal(t, byte(endBlock), framed[len(framed)-2])
	assert.Equal(t, byte(carriageRt), framed[len(framed)-1])
}

func TestBuildMessageORU(t *testing.T) {
	msg := BuildMessage(BuildParams{
		SendingApp: "LAB", SendingFacility: "HOSP", ReceivingApp: "EHR",
		ReceivingFacility: "CLINIC", Timestamp: "20260101120000",
		MessageType: "ORU^R01", ControlID: "CTRL1",
	})
	assert.Contains(t, msg, "MSH|^~\\&|LAB|HOSP|EHR|CLINIC|20260101120000||ORU^R01|CTRL1|P|2.3")
	assert.Contains(t, msg, "OBX|1|NM|WBC")
}

func TestBuildMessageFallsThroughToADT(t *testing.T) {
	msg := BuildMessage(BuildParams{MessageType: "ADT^A08", Timestamp: "20260101120000"})
	assert.Contains(t, msg, "EVN|A01|20260101120000")
	assert.NotContains(t, msg, "OBX")
}

func TestParseMessageMSHFieldIndexing(t *testing.T) {
	raw := "MSH|^~\\&|LAB|HOSP|EHR|CLINIC|20260101120000||ORU^R01|CTRL1|P|2.3"
	parsed, err := ParseMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, "LAB", parsed.MSH.SendingApp)
	assert.Equal(t, "HOSP", parsed.MSH.SendingFacility)
	assert.Equal(t, "EHR", parsed.MSH.ReceivingApp)
	assert.Equal(t, "CLINIC", parsed.MSH.ReceivingFacility)
	assert.Equal(t, "ORU", parsed.MSH.MessageType)
	assert.Equal(t, "R01", parsed.MSH.TriggerEvent)
	assert.Equal(t, "CTRL1", parsed.MSH.ControlID)
	assert.Equal(t, "P", parsed.MSH.ProcessingID)
	assert.Equal(t, "2.3", parsed.MSH.Version)
}

func TestParseMessageMSAUsesIndexTwoForAckText(t *testing.T) {
	raw := "MSH|^~\\&|EHR|CLINIC|LAB|HOSP|20260101120000||ACK^R01|CTRL1|P|2.3\r" +
		"MSA|AA|CTRL1|Message accepted"
	parsed, err := ParseMessage(raw)
	require.NoError(t, err)
	require.NotNil(t, parsed.Ack)
	assert.Equal(t, "AA", parsed.Ack.AckCode)
	assert.Equal(t, "Message accepted", parsed.Ack.AckText)
}

func TestParseMessageRejectsNonMSHFirstSegment(t *testing.T) {
	_, err := ParseMessage("OBX|1|NM|WBC")
	assert.Error(t, err)
}

func TestParseMessageRejectsEmpty(t *testing.T) {
	_, err := ParseMessage("")
	assert.Error(t, err)
}
