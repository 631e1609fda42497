/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package api is the handler-adaptor layer: one thin http.HandlerFunc
// per `POST /api/<proto>/<op>` endpoint, wrapping the protocol
// operations under internal/protocols. Every adaptor does the same
// five things, per spec: enforce the method, decode and validate the
// request body, consult the target-block predicate, invoke the
// operation, and map the typed result or error to that endpoint's JSON
// response shape.
package api

import (
	"net/http"

	"github.com/rossgg/portofcall/config"
	"github.com/rossgg/portofcall/ingest/log"
)

// Server holds the dependencies every handler adaptor needs: the
// gateway's static configuration, a logger, and the target-block
// predicate. It carries no per-request state.
type Server struct {
	Config  *config.GatewayConfig
	Log     *log.Logger
	Blocked func(host string) bool
}

// NewServer builds a Server whose Blocked predicate is backed by
// cfg.Blocked_Networks.
func NewServer(cfg *config.GatewayConfig, lg *log.Logger) *Server {
	return &Server{
		Config:  cfg,
		Log:     lg,
		Blocked: NewBlocklist(cfg.Blocked_Networks).IsBlocked,
	}
}

// Mux builds the *http.ServeMux carrying every registered endpoint.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	s.registerSMB2(mux)
	s.registerISCSI(mux)
	s.registerHL7(mux)
	s.registerRadius(mux)
	s.registerSIP(mux)
	s.registerPCEP(mux)
	s.registerThrift(mux)
	s.registerIgnite(mux)
	s.registerDNS(mux)
	s.registerHTTPProbe(mux)
	s.registerTextline(mux)
	s.registerSNMP(mux)
	s.registerIPMI(mux)
	s.registerKafka(mux)
	s.registerAMQP(mux)
	s.registerWebSocket(mux)
	return mux
}
