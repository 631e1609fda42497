/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package snmp

import (
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/require"
)

func TestAuthProtocolMapping(t *testing.T) {
	require.Equal(t, gosnmp.SHA256, authProtocol("SHA256"))
	require.Equal(t, gosnmp.MD5, authProtocol("bogus"))
}

func TestPrivProtocolMapping(t *testing.T) {
	require.Equal(t, gosnmp.AES, privProtocol("AES"))
	require.Equal(t, gosnmp.DES, privProtocol("bogus"))
}
