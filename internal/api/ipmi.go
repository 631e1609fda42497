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

	"github.com/rossgg/portofcall/internal/protocols/ipmi"
)

var ipmiRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type ipmiChassisStatusRequest struct {
	RawTargetRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) registerIPMI(mux *http.ServeMux) {
	mux.HandleFunc("/api/ipmi/chassisstatus", s.handleIPMIChassisStatus)
}

func (s *Server) handleIPMIChassisStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req ipmiChassisStatusRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	host, port, ms, ok := s.authorizeRaw(w, req.RawTargetRequest, ipmiRange)
	if !ok {
		return
	}
	res, err := ipmi.ChassisStatus(ipmi.Params{Host: host, Port: port, DeadlineMs: ms, Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
