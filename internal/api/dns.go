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

	"github.com/rossgg/portofcall/internal/protocols/dns"
)

var dnsRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type dnsPlainRequest struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	TimeoutMs int    `json:"timeoutMs"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}

type dnsQueryRequest struct {
	TargetRequest
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *Server) registerDNS(mux *http.ServeMux) {
	mux.HandleFunc("/api/dns/query", s.handleDNSQuery)
	mux.HandleFunc("/api/dns/dot", s.handleDNSOverTLS)
	mux.HandleFunc("/api/dns/doh", s.handleDNSOverHTTPS)
}

func (s *Server) handleDNSQuery(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req dnsPlainRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	rt := RawTargetRequest{Host: req.Host, Port: req.Port, TimeoutMs: req.TimeoutMs}
	host, port, _, ok := s.authorizeRaw(w, rt, dnsRange)
	if !ok {
		return
	}
	res, err := dns.Query(r.Context(), dns.PlainQueryParams{Host: host, Port: port, Name: req.Name, Type: req.Type})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleDNSOverTLS(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req dnsQueryRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, dnsRange, false)
	if !ok {
		return
	}
	res, err := dns.QueryOverTLS(r.Context(), dns.QueryParams{Target: target, Name: req.Name, Type: req.Type})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleDNSOverHTTPS(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req dnsQueryRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, dnsRange, false)
	if !ok {
		return
	}
	res, err := dns.QueryOverHTTPS(r.Context(), dns.QueryParams{Target: target, Name: req.Name, Type: req.Type})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
