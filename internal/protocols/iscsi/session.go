/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package iscsi

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/rossgg/portofcall/internal/engine/authcrypto"
	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// DefaultInitiatorName is the fixed InitiatorName template used when the
// caller supplies none.
const DefaultInitiatorName = "iqn.2024-01.gg.ross.portofcall:initiator"

// Params describes one probe.
type Params struct {
	Target        transport.Target
	InitiatorName string
}

func (p Params) initiatorName() string {
	if p.InitiatorName != `` {
		return p.InitiatorName
	}
	return DefaultInitiatorName
}

// seq tracks CmdSN/ExpStatSN/InitiatorTaskTag across one login phase
// (ExpStatSN echoes the most recently received StatSN).
type seq struct {
	cmdSN     uint32
	expStatSN uint32
	itt       uint32
}

func (s *seq) observe(h *loginResponseHeader) {
	s.expStatSN = h.StatSN
}

func (s *seq) nextITT() uint32 {
	id := s.itt
	s.itt++
	return id
}

func sendLogin(tr *transport.Transport, s *seq, transit bool, csg, nsg byte, keys [][2]string) (*LoginLegResult, error) {
	pdu := buildLoginRequest(s.cmdSN, s.expStatSN, s.nextITT(), transit, csg, nsg, keys)
	s.cmdSN++
	if err := tr.Write(pdu); err != nil {
		return nil, err
	}
	bhs, data, err := readPDU(tr)
	if err != nil {
		return nil, err
	}
	leg, err := parseLoginResponse(bhs, data)
	if err != nil {
		return nil, err
	}
	s.observe(leg.Header)
	return leg, nil
}

func sendText(tr *transport.Transport, s *seq, keys [][2]string) ([][2]string, error) {
	pdu := buildTextRequest(s.cmdSN, s.expStatSN, s.nextITT(), keys)
	s.cmdSN++
	if err := tr.Write(pdu); err != nil {
		return nil, err
	}
	_, data, err := readPDU(tr)
	if err != nil {
		return nil, err
	}
	return parseKeyValues(data), nil
}

// TargetEntry is one discovered iSCSI target and its reachable addresses.
type TargetEntry struct {
	Name      string
	Addresses []string
}

// DiscoverResult is the `/api/iscsi/discover` success payload.
type DiscoverResult struct {
	LoginStatus string
	Targets     []TargetEntry
}

// Discover runs an unauthenticated SendTargets=All discovery session.
func Discover(ctx context.Context, p Params) (*DiscoverResult, error) {
	return session.Run(ctx, p.Target, func(tr *transport.Transport) {}, func(tr *transport.Transport) (*DiscoverResult, error) {
		s := &seq{}
		leg, err := sendLogin(tr, s, true, StageLoginOperational, StageFullFeature, [][2]string{
			{"InitiatorName", p.initiatorName()},
			{"SessionType", "Discovery"},
			{"AuthMethod", "None"},
			{"HeaderDigest", "None"},
			{"DataDigest", "None"},
			{"MaxRecvDataSegmentLength", "65536"},
		})
		if err != nil {
			return nil, err
		}
		if leg.Header.StatusClass != 0 {
			return &DiscoverResult{LoginStatus: loginStatusText(leg.Header.StatusClass, leg.Header.StatusDetail)}, nil
		}

		kvs, err := sendText(tr, s, [][2]string{{"SendTargets", "All"}})
		if err != nil {
			return nil, err
		}
		return &DiscoverResult{
			LoginStatus: loginStatusText(leg.Header.StatusClass, leg.Header.StatusDetail),
			Targets:     groupTargets(kvs),
		}, nil
	})
}

func groupTargets(kvs [][2]string) []TargetEntry {
	var out []TargetEntry
	for _, kv := range kvs {
		switch kv[0] {
		case "TargetName":
			out = append(out, TargetEntry{Name: kv[1]})
		case "TargetAddress":
			if len(out) > 0 {
				out[len(out)-1].Addresses = append(out[len(out)-1].Addresses, kv[1])
			}
		}
	}
	return out
}

// LoginParams extends Params with the target IQN to log into and
// optional CHAP credentials (empty username disables CHAP and logs in
// as None).
type LoginParams struct {
	Params
	TargetName string
	Username   string
	Password   string
}

// LoginResult is the `/api/iscsi/login` success payload.
type LoginResult struct {
	Success     bool
	LoginStatus string
}

// Login runs a CHAP (or, if Username is empty, None) login to Normal
// session type and attempts to reach FullFeature stage.
func Login(ctx context.Context, p LoginParams) (*LoginResult, error) {
	return session.Run(ctx, p.Target, func(tr *transport.Transport) {}, func(tr *transport.Transport) (*LoginResult, error) {
		s := &seq{}
		authMethod := "None"
		if p.Username != `` {
			authMethod = "CHAP,None"
		}
		loginKeys := [][2]string{
			{"InitiatorName", p.initiatorName()},
			{"SessionType", "Normal"},
			{"AuthMethod", authMethod},
		}
		if p.TargetName != `` {
			loginKeys = append(loginKeys, [2]string{"TargetName", p.TargetName})
		}
		leg, err := sendLogin(tr, s, false, StageSecurityNegotiation, StageLoginOperational, loginKeys)
		if err != nil {
			return nil, err
		}
		if leg.Header.StatusClass != 0 {
			return &LoginResult{LoginStatus: loginStatusText(leg.Header.StatusClass, leg.Header.StatusDetail)}, nil
		}

		if p.Username != `` {
			if _, ok := lookupKey(leg.Keys, "AuthMethod"); !ok {
				return nil, ecode.New(ecode.ProtocolError, "iscsi: target did not negotiate CHAP")
			}
			chapA, _ := lookupKey(leg.Keys, "CHAP_A")
			if chapA != "5" {
				return nil, ecode.Newf(ecode.ProtocolError, "iscsi: unsupported CHAP algorithm %q", chapA)
			}
			chapIStr, _ := lookupKey(leg.Keys, "CHAP_I")
			chapCHex, _ := lookupKey(leg.Keys, "CHAP_C")
			chapID, err := strconv.Atoi(chapIStr)
			if err != nil {
				return nil, ecode.New(ecode.Malformed, "iscsi: bad CHAP_I")
			}
			challenge, err := hex.DecodeString(strings.TrimPrefix(chapCHex, "0x"))
			if err != nil {
				return nil, ecode.New(ecode.Malformed, "iscsi: bad CHAP_C")
			}
			resp := authcrypto.CHAPResponse(byte(chapID), []byte(p.Password), challenge)

			leg, err = sendLogin(tr, s, true, StageSecurityNegotiation, StageLoginOperational, [][2]string{
				{"CHAP_N", p.Username},
				{"CHAP_R", "0x" + hex.EncodeToString(resp)},
			})
			if err != nil {
				return nil, err
			}
			if leg.Header.StatusClass != 0 {
				return &LoginResult{LoginStatus: loginStatusText(leg.Header.StatusClass, leg.Header.StatusDetail)}, nil
			}
		}

		if leg.Header.CSG != StageFullFeature {
			leg, err = sendLogin(tr, s, true, StageLoginOperational, StageFullFeature, nil)
			if err != nil {
				return nil, err
			}
		}
		return &LoginResult{
			Success:     leg.Header.StatusClass == 0,
			LoginStatus: loginStatusText(leg.Header.StatusClass, leg.Header.StatusDetail),
		}, nil
	})
}
