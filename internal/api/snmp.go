/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package api

import (
	"net/http"

	"github.com/rossgg/portofcall/internal/protocols/snmp"
)

var snmpRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type snmpV3Request struct {
	Username     string `json:"username"`
	AuthProtocol string `json:"authProtocol"`
	AuthPassword string `json:"authPassword"`
	PrivProtocol string `json:"privProtocol"`
	PrivPassword string `json:"privPassword"`
}

type snmpGetRequest struct {
	RawTargetRequest
	Community string         `json:"community"`
	V3        *snmpV3Request `json:"v3,omitempty"`
}

func (s *Server) registerSNMP(mux *http.ServeMux) {
	mux.HandleFunc("/api/snmp/get", s.handleSNMPGet)
}

func (s *Server) handleSNMPGet(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req snmpGetRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	host, port, ms, ok := s.authorizeRaw(w, req.RawTargetRequest, snmpRange)
	if !ok {
		return
	}
	params := snmp.Params{Host: host, Port: port, DeadlineMs: ms, Community: req.Community}
	if req.V3 != nil {
		params.V3 = &snmp.V3Params{
			Username: req.V3.Username, AuthProtocol: req.V3.AuthProtocol, AuthPassword: req.V3.AuthPassword,
			PrivProtocol: req.V3.PrivProtocol, PrivPassword: req.V3.PrivPassword,
		}
	}
	res, err := snmp.Get(params)
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
