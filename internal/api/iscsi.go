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

	"github.com/rossgg/portofcall/internal/protocols/iscsi"
)

var iscsiRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type iscsiRequest struct {
	TargetRequest
	InitiatorName string `json:"initiatorName"`
	TargetName    string `json:"targetName"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

func (s *Server) registerISCSI(mux *http.ServeMux) {
	mux.HandleFunc("/api/iscsi/discover", s.handleISCSIDiscover)
	mux.HandleFunc("/api/iscsi/login", s.handleISCSILogin)
}

func (s *Server) handleISCSIDiscover(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req iscsiRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, iscsiRange, false)
	if !ok {
		return
	}
	res, err := iscsi.Discover(r.Context(), iscsi.Params{Target: target, InitiatorName: req.InitiatorName})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleISCSILogin(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req iscsiRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, iscsiRange, false)
	if !ok {
		return
	}
	res, err := iscsi.Login(r.Context(), iscsi.LoginParams{
		Params:     iscsi.Params{Target: target, InitiatorName: req.InitiatorName},
		TargetName: req.TargetName,
		Username:   req.Username,
		Password:   req.Password,
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
