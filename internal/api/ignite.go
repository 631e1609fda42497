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

	"github.com/rossgg/portofcall/internal/protocols/ignite"
)

var igniteRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type igniteCallRequest struct {
	TargetRequest
	CacheName string `json:"cacheName"`
	Key       string `json:"key"`
}

func (s *Server) registerIgnite(mux *http.ServeMux) {
	mux.HandleFunc("/api/ignite/probe", s.handleIgniteProbe)
	mux.HandleFunc("/api/ignite/call", s.handleIgniteCall)
}

func (s *Server) handleIgniteProbe(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req TargetRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req, igniteRange, false)
	if !ok {
		return
	}
	res, err := ignite.Probe(r.Context(), ignite.Params{Target: target})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleIgniteCall(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req igniteCallRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, igniteRange, false)
	if !ok {
		return
	}
	res, err := ignite.Call(r.Context(), ignite.CacheGetParams{Target: target, CacheName: req.CacheName, Key: req.Key})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
