/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package iscsi

// buildLoginRequest assembles a full Login Request PDU (BHS + padded
// data segment) for the given stage transition and key/value list.
func buildLoginRequest(cmdSN, expStatSN, itt uint32, transit bool, csg, nsg byte, keys [][2]string) []byte {
	padded, rawLen := encodeKeyValues(keys)
	b := bhsBuilder{
		opcode:           OpLoginRequest,
		flags:            loginFlags(transit, csg, nsg),
		dataSegmentLen:   uint32(rawLen),
		isid:             fixedISID,
		initiatorTaskTag: itt,
		cmdSN:            cmdSN,
		expStatSN:        expStatSN,
	}
	return append(b.encode(), padded...)
}

// buildTextRequest assembles a Text Request PDU.
func buildTextRequest(cmdSN, expStatSN, itt uint32, keys [][2]string) []byte {
	padded, rawLen := encodeKeyValues(keys)
	b := bhsBuilder{
		opcode:           OpTextRequest,
		flags:            flagTransit,
		dataSegmentLen:   uint32(rawLen),
		initiatorTaskTag: itt,
		cmdSN:            cmdSN,
		expStatSN:        expStatSN,
	}
	return append(b.encode(), padded...)
}

// LoginLegResult is the decoded outcome of one Login Response.
type LoginLegResult struct {
	Header *loginResponseHeader
	Keys   [][2]string
}

func parseLoginResponse(bhs, data []byte) (*LoginLegResult, error) {
	h, err := parseLoginResponseHeader(bhs)
	if err != nil {
		return nil, err
	}
	return &LoginLegResult{Header: h, Keys: parseKeyValues(data)}, nil
}
