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

	"github.com/rossgg/portofcall/internal/protocols/pcep"
)

var pcepRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type pcepRequest struct {
	TargetRequest
	SrcAddr   string   `json:"srcAddr"`
	DstAddr   string   `json:"dstAddr"`
	Bandwidth *float32 `json:"bandwidth,omitempty"`
}

func (s *Server) registerPCEP(mux *http.ServeMux) {
	mux.HandleFunc("/api/pcep/computepath", s.handlePCEPComputePath)
}

func (s *Server) handlePCEPComputePath(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req pcepRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, pcepRange, false)
	if !ok {
		return
	}
	res, err := pcep.ComputePath(r.Context(), pcep.Params{
		Target: target, SrcAddr: req.SrcAddr, DstAddr: req.DstAddr, Bandwidth: req.Bandwidth,
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
