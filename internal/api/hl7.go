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

	"github.com/rossgg/portofcall/ingest/log"
	"github.com/rossgg/portofcall/internal/protocols/hl7"
)

var hl7Range = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type hl7Request struct {
	TargetRequest
	SendingApp        string `json:"sendingApp"`
	SendingFacility   string `json:"sendingFacility"`
	ReceivingApp      string `json:"receivingApp"`
	ReceivingFacility string `json:"receivingFacility"`
	Timestamp         string `json:"timestamp"`
	MessageType       string `json:"messageType"`
	ControlID         string `json:"controlId"`
	ProcessingID      string `json:"processingId"`
	Version           string `json:"version"`
}

// registerHL7 wires the `/api/hl7/send` endpoint; this is one of the
// endpoints that reports a 504 (rather than a 200 success:false) on a
// connection timeout, since an unanswered ADT/ORU send is itself
// diagnostic signal worth a distinct status code.
func (s *Server) registerHL7(mux *http.ServeMux) {
	mux.HandleFunc("/api/hl7/send", s.handleHL7Send)
}

func (s *Server) handleHL7Send(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req hl7Request
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, hl7Range, false)
	if !ok {
		return
	}
	if req.MessageType != `` && req.MessageType != "ORU^R01" {
		s.Log.Warn("hl7 send falling through to ADT^A01 body", log.KV("messageType", req.MessageType))
	}
	res, err := hl7.Send(r.Context(), hl7.SendParams{
		Target: target,
		BuildParams: hl7.BuildParams{
			SendingApp:        req.SendingApp,
			SendingFacility:   req.SendingFacility,
			ReceivingApp:      req.ReceivingApp,
			ReceivingFacility: req.ReceivingFacility,
			Timestamp:         req.Timestamp,
			MessageType:       req.MessageType,
			ControlID:         req.ControlID,
			ProcessingID:      req.ProcessingID,
			Version:           req.Version,
		},
	})
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeSuccess(w, res)
}
