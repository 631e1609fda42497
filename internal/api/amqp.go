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

	amqp "github.com/rossgg/portofcall/internal/protocols/amqp"
	"github.com/rossgg/portofcall/internal/protocols/amqp091"
)

var amqpRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type amqpProbeRequest struct {
	RawTargetRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

type amqp091ProbeRequest struct {
	TargetRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

// registerAMQP wires both the AMQP 1.0 probe (protocols/amqp, built on
// Azure/go-amqp) and the distinct AMQP 0-9-1 probe (protocols/amqp091,
// the RabbitMQ wire) under separate endpoints.
func (s *Server) registerAMQP(mux *http.ServeMux) {
	mux.HandleFunc("/api/amqp/probe", s.handleAMQPProbe)
	mux.HandleFunc("/api/amqp091/probe", s.handleAMQP091Probe)
}

func (s *Server) handleAMQPProbe(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req amqpProbeRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	host, port, ms, ok := s.authorizeRaw(w, req.RawTargetRequest, amqpRange)
	if !ok {
		return
	}
	res, err := amqp.Probe(r.Context(), amqp.Params{Host: host, Port: port, DeadlineMs: ms, Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleAMQP091Probe(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req amqp091ProbeRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, amqpRange, false)
	if !ok {
		return
	}
	res, err := amqp091.Probe(r.Context(), amqp091.Params{Target: target, Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
