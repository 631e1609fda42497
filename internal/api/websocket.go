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

	"github.com/rossgg/portofcall/internal/protocols/websocket"
)

var websocketRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type websocketProbeRequest struct {
	RawTargetRequest
	Path         string   `json:"path"`
	TLS          bool     `json:"tls"`
	Subprotocols []string `json:"subprotocols,omitempty"`
}

func (s *Server) registerWebSocket(mux *http.ServeMux) {
	mux.HandleFunc("/api/websocket/probe", s.handleWebSocketProbe)
}

func (s *Server) handleWebSocketProbe(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req websocketProbeRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	host, port, ms, ok := s.authorizeRaw(w, req.RawTargetRequest, websocketRange)
	if !ok {
		return
	}
	res, err := websocket.Probe(websocket.Params{
		Host: host, Port: port, Path: req.Path, TLS: req.TLS, DeadlineMs: ms, Subprotocols: req.Subprotocols,
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
