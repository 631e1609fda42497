/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGatewayConfigVerifyDefaults(t *testing.T) {
	var gc GatewayConfig
	require.NoError(t, gc.Verify())
	require.Equal(t, defaultBindAddress, gc.Bind_Address)
	require.Equal(t, defaultLogLevel, gc.Log_Level)
	require.False(t, gc.TLSEnabled())

	to, err := gc.Timeout()
	require.NoError(t, err)
	require.Equal(t, defaultTimeout, to)

	max, err := gc.MaxTimeout()
	require.NoError(t, err)
	require.Equal(t, defaultMaxTimeout, max)

	require.EqualValues(t, defaultResponseCap, gc.MaxResponseBytes())
}

func TestGatewayConfigAppendsDefaultPort(t *testing.T) {
	gc := GatewayConfig{Bind_Address: `127.0.0.1`}
	require.NoError(t, gc.Verify())
	require.Equal(t, `127.0.0.1:8443`, gc.Bind_Address)
}

func TestGatewayConfigRejectsOneSidedTLS(t *testing.T) {
	gc := GatewayConfig{TLS_Cert: `/etc/portofcall/cert.pem`}
	require.ErrorIs(t, gc.Verify(), ErrTLSCertWithoutKey)
}

func TestGatewayConfigRejectsBadLogLevel(t *testing.T) {
	gc := GatewayConfig{Log_Level: `VERBOSE`}
	require.ErrorIs(t, gc.Verify(), ErrInvalidLogLevel)
}

func TestGatewayConfigRejectsBadTimeout(t *testing.T) {
	gc := GatewayConfig{Default_Timeout: `not-a-duration`}
	require.Error(t, gc.Verify())
}

func TestGatewayConfigTLSEnabled(t *testing.T) {
	gc := GatewayConfig{TLS_Cert: `cert.pem`, TLS_Key: `key.pem`}
	require.NoError(t, gc.Verify())
	require.True(t, gc.TLSEnabled())
}
