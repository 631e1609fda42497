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

	"github.com/rossgg/portofcall/internal/protocols/sip"
)

var sipRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type sipRequest struct {
	TargetRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) registerSIP(mux *http.ServeMux) {
	mux.HandleFunc("/api/sip/options", s.handleSIPOptions)
}

func (s *Server) handleSIPOptions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req sipRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, sipRange, false)
	if !ok {
		return
	}
	res, err := sip.Options(r.Context(), sip.Params{Target: target, Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
