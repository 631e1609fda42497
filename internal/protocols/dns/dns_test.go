/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNameRootAndLabels(t *testing.T) {
	b, err := encodeName("example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0}, b)
}

func TestEncodeNameRejectsOverlongLabel(t *testing.T) {
	longLabel := make([]byte, 64)
	for i := range longLabel {
		longLabel[i] = 'a'
	}
	_, err := encodeName(string(longLabel) + ".com")
	assert.Error(t, err)
}

func TestBuildQueryShape(t *testing.T) {
	msg, err := BuildQuery("example.com", TypeA)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0100), uint16(msg[2])<<8|uint16(msg[3]))
	assert.Equal(t, uint16(1), uint16(msg[4])<<8|uint16(msg[5]))
}

// decodeMessageFixture is the byte-for-byte message this package's
// negative/positive tests decode: a single A-record answer for
// example.com with a compression pointer back to the question name.
var decodeMessageFixture = []byte{
	18, 52, 129, 128, 0, 1, 0, 1, 0, 0, 0, 0,
	7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0,
	0, 1, 0, 1,
	192, 12,
	0, 1, 0, 1, 0, 0, 1, 44, 0, 4,
	93, 184, 216, 34,
}

func TestDecodeMessageWithCompressionPointer(t *testing.T) {
	msg, err := DecodeMessage(decodeMessageFixture)
	require.NoError(t, err)
	assert.EqualValues(t, 0x1234, msg.TxID)
	require.Len(t, msg.Questions, 1)
	assert.Equal(t, "example.com", msg.Questions[0].Name)
	require.Len(t, msg.Answers, 1)
	assert.Equal(t, "example.com", msg.Answers[0].Name)
	assert.Equal(t, "93.184.216.34", msg.Answers[0].Data)
}

func TestDecodeNameRejectsPointerLoop(t *testing.T) {
	// Two bytes at offset 12 form a pointer to themselves: an
	// infinite loop that must fail with MALFORMED, not hang.
	b := make([]byte, 14)
	b[12] = 0xC0
	b[13] = 0x0C
	_, _, err := decodeName(b, 12)
	assert.Error(t, err)
}

func TestDecodeAAAARecord(t *testing.T) {
	rdata := make([]byte, 16)
	for i := range rdata {
		rdata[i] = byte(i)
	}
	v, err := decodeRData(append([]byte{0}, rdata...), 1, 16, TypeAAAA)
	require.NoError(t, err)
	assert.Equal(t, "1:203:405:607:809:a0b:c0d:e0f", v)
}

func TestDecodeTXTConcatenatesCharacterStrings(t *testing.T) {
	rdata := append([]byte{5}, []byte("hello")...)
	rdata = append(rdata, 5)
	rdata = append(rdata, []byte("world")...)
	v, err := decodeRData(append([]byte{0}, rdata...), 1, len(rdata), TypeTXT)
	require.NoError(t, err)
	assert.Equal(t, "helloworld", v)
}
