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

type testGlobal struct {
	Bind_Address     string
	TLS_Cert         string
	Default_Timeout  string
	Response_Cap     int64
	Blocked_Networks []string
}

type testCfg struct {
	Global testGlobal
}

func TestLoadConfigBytesParsesGatewaySection(t *testing.T) {
	b := []byte(`
	[Global]
	Bind-Address = "0.0.0.0:9443"
	TLS-Cert = "/etc/portofcall/cert.pem"
	Default-Timeout = "15s"
	Response-Cap = 131072
	Blocked-Networks = 10.0.0.0/8
	Blocked-Networks = 127.0.0.0/8
	`)

	var c testCfg
	require.NoError(t, LoadConfigBytes(&c, b))
	require.Equal(t, `0.0.0.0:9443`, c.Global.Bind_Address)
	require.Equal(t, `/etc/portofcall/cert.pem`, c.Global.TLS_Cert)
	require.Equal(t, `15s`, c.Global.Default_Timeout)
	require.EqualValues(t, 131072, c.Global.Response_Cap)
	require.Equal(t, []string{`10.0.0.0/8`, `127.0.0.0/8`}, c.Global.Blocked_Networks)
}

func TestLoadConfigBytesRejectsOversizedInput(t *testing.T) {
	huge := make([]byte, maxConfigSize+1)
	var c testCfg
	require.ErrorIs(t, LoadConfigBytes(&c, huge), ErrConfigFileTooLarge)
}

func TestVariableConfigMapToRequiresVals(t *testing.T) {
	var vc VariableConfig
	var out testGlobal
	require.ErrorIs(t, vc.MapTo(&out), ErrBadMap)
}
