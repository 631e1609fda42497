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

	"github.com/rossgg/portofcall/internal/protocols/radius"
)

var radiusRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type radiusAccessRequest struct {
	TargetRequest
	Username     string `json:"username"`
	Password     string `json:"password"`
	SharedSecret string `json:"sharedSecret"`
}

type radsecRequest struct {
	TargetRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) registerRadius(mux *http.ServeMux) {
	mux.HandleFunc("/api/radius/accessrequest", s.handleRadiusAccessRequest)
	mux.HandleFunc("/api/radius/radsec", s.handleRadsec)
}

func (s *Server) handleRadiusAccessRequest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req radiusAccessRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, radiusRange, false)
	if !ok {
		return
	}
	res, err := radius.AccessRequest(r.Context(), radius.Params{
		Target: target, Username: req.Username, Password: req.Password, SharedSecret: req.SharedSecret,
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleRadsec(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req radsecRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, radiusRange, false)
	if !ok {
		return
	}
	res, err := radius.Radsec(r.Context(), radius.RadsecParams{Target: target, Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
