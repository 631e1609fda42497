/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package snmp implements the `/api/snmp/get` probe from SPEC_FULL's
// additional-protocols table: a single UDP GET of sysDescr/sysUpTime
// against a v1/v2c community or a v3 USM identity. SNMP is UDP, so this
// package manages its own socket via gosnmp rather than
// engine/transport (which is TCP/TLS-only per spec §4.1); it still
// honours the single wall-clock deadline and engine error taxonomy
// every other probe does.
package snmp

import (
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// sysDescrOID and sysUpTimeOID are the two well-known MIB-II scalars
// every SNMP agent is expected to answer.
const (
	sysDescrOID  = "1.3.6.1.2.1.1.1.0"
	sysUpTimeOID = "1.3.6.1.2.1.1.3.0"
)

// V3Params carries SNMPv3 USM credentials; nil on Params means v1/v2c.
type V3Params struct {
	Username     string
	AuthProtocol string // "MD5", "SHA", "SHA256", ... empty = noAuth
	AuthPassword string
	PrivProtocol string // "DES", "AES", ... empty = noPriv
	PrivPassword string
}

// Params is the `/api/snmp/get` request.
type Params struct {
	Host       string
	Port       int
	DeadlineMs int
	Community  string // used when V3 is nil; defaults to "public"
	V3         *V3Params
}

// Result is the success payload: the two scalars, decoded to strings,
// plus the negotiated SNMP version.
type Result struct {
	Version    string
	SysDescr   string
	SysUpTime  string
	RawUptime  uint32
}

// Get performs one SNMP GET of sysDescr/sysUpTime.
func Get(p Params) (*Result, error) {
	g := &gosnmp.GoSNMP{
		Target:    p.Host,
		Port:      uint16(p.Port),
		Timeout:   time.Duration(p.DeadlineMs) * time.Millisecond,
		Retries:   1,
		MaxOids:   gosnmp.MaxOids,
	}

	version := "2c"
	if p.V3 != nil {
		version = "3"
		g.Version = gosnmp.Version3
		g.SecurityModel = gosnmp.UserSecurityModel
		usm := &gosnmp.UsmSecurityParameters{UserName: p.V3.Username}
		flags := gosnmp.NoAuthNoPriv
		if p.V3.AuthProtocol != `` {
			usm.AuthenticationProtocol = authProtocol(p.V3.AuthProtocol)
			usm.AuthenticationPassphrase = p.V3.AuthPassword
			flags = gosnmp.AuthNoPriv
			if p.V3.PrivProtocol != `` {
				usm.PrivacyProtocol = privProtocol(p.V3.PrivProtocol)
				usm.PrivacyPassphrase = p.V3.PrivPassword
				flags = gosnmp.AuthPriv
			}
		}
		g.MsgFlags = flags
		g.SecurityParameters = usm
	} else {
		community := p.Community
		if community == `` {
			community = "public"
		}
		g.Version = gosnmp.Version2c
		g.Community = community
	}

	if err := g.Connect(); err != nil {
		return nil, ecode.New(ecode.Refused, "snmp: connect failed: "+err.Error())
	}
	defer g.Conn.Close()

	pkt, err := g.Get([]string{sysDescrOID, sysUpTimeOID})
	if err != nil {
		if isTimeoutErr(err) {
			return nil, ecode.New(ecode.Timeout, "snmp: request timed out")
		}
		return nil, ecode.New(ecode.ProtocolError, "snmp: GET failed: "+err.Error())
	}
	if len(pkt.Variables) == 0 {
		return nil, ecode.New(ecode.Malformed, "snmp: empty response")
	}

	res := &Result{Version: version}
	for _, v := range pkt.Variables {
		switch v.Name {
		case "." + sysDescrOID, sysDescrOID:
			if b, ok := v.Value.([]byte); ok {
				res.SysDescr = string(b)
			}
		case "." + sysUpTimeOID, sysUpTimeOID:
			if u, ok := v.Value.(uint32); ok {
				res.RawUptime = u
				res.SysUpTime = (time.Duration(u) * 10 * time.Millisecond).String()
			}
		}
	}
	return res, nil
}

func authProtocol(name string) gosnmp.SnmpV3AuthProtocol {
	switch name {
	case "SHA":
		return gosnmp.SHA
	case "SHA224":
		return gosnmp.SHA224
	case "SHA256":
		return gosnmp.SHA256
	case "SHA384":
		return gosnmp.SHA384
	case "SHA512":
		return gosnmp.SHA512
	default:
		return gosnmp.MD5
	}
}

func privProtocol(name string) gosnmp.SnmpV3PrivProtocol {
	switch name {
	case "AES":
		return gosnmp.AES
	case "AES192":
		return gosnmp.AES192
	case "AES256":
		return gosnmp.AES256
	default:
		return gosnmp.DES
	}
}

func isTimeoutErr(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
