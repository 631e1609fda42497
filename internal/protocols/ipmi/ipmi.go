/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package ipmi implements the `/api/ipmi/chassisstatus` probe from
// SPEC_FULL's additional-protocols table: an RMCP+ (IPMI v2.0) session
// to a BMC followed by a Get Chassis Status command. IPMI rides UDP/623
// and its own RAKP session-establishment handshake, so like protocols/snmp
// this package lets the library (gravwell/ipmigo) own the socket rather
// than engine/transport.
package ipmi

import (
	"net"
	"strconv"
	"time"

	"github.com/gravwell/ipmigo"
	"github.com/rossgg/portofcall/internal/engine/ecode"
)

// Params is the `/api/ipmi/chassisstatus` request.
type Params struct {
	Host       string
	Port       int
	DeadlineMs int
	Username   string
	Password   string
}

// Result is the decoded Get Chassis Status response.
type Result struct {
	PowerIsOn          bool
	PowerOverload       bool
	PowerFault          bool
	PowerControlFault   bool
	LastPowerOnFault    bool
	IdentifySupported   bool
	IdentifyOn          bool
	CoolingFaultDetected bool
	DriveFaultDetected   bool
}

// ChassisStatus opens an RMCP+ session using Username/Password and
// executes a Get Chassis Status command, per the IPMI v2.0 spec's
// chassis-device command set.
func ChassisStatus(p Params) (*Result, error) {
	port := p.Port
	if port == 0 {
		port = 623
	}
	client, err := ipmigo.NewClient(ipmigo.Arguments{
		Version:       ipmigo.V2_0,
		Address:       addr(p.Host, port),
		Username:      p.Username,
		Password:      p.Password,
		Timeout:       time.Duration(p.DeadlineMs) * time.Millisecond,
		Retries:       1,
		CipherSuiteID: 3,
	})
	if err != nil {
		return nil, ecode.New(ecode.Validation, "ipmi: invalid arguments: "+err.Error())
	}

	if err := client.Open(); err != nil {
		if isTimeout(err) {
			return nil, ecode.New(ecode.Timeout, "ipmi: RAKP session open timed out")
		}
		return nil, ecode.New(ecode.AuthFail, "ipmi: session open failed: "+err.Error())
	}
	defer client.Close()

	cmd := &ipmigo.GetChassisStatusCommand{}
	if err := client.Execute(cmd); err != nil {
		return nil, ecode.New(ecode.ProtocolError, "ipmi: Get Chassis Status failed: "+err.Error())
	}

	return &Result{
		PowerIsOn:            cmd.PowerIsOn,
		PowerOverload:        cmd.PowerOverload,
		PowerFault:           cmd.PowerFault,
		PowerControlFault:    cmd.PowerControlFault,
		LastPowerOnFault:     cmd.LastPowerOnStateFault,
		IdentifySupported:    cmd.ChassisIdentifyCommandSupported,
		IdentifyOn:           cmd.ChassisIdentifyState != 0,
		CoolingFaultDetected: cmd.CoolingFanFaultDetected,
		DriveFaultDetected:   cmd.DriveFaultDetected,
	}, nil
}

func addr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
