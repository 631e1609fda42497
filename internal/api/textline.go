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

	"github.com/rossgg/portofcall/internal/protocols/textline"
)

var textlineRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type smtpRequest struct {
	TargetRequest
	Helo string `json:"helo"`
}

type ftpRequest struct {
	TargetRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

type pop3Request struct {
	TargetRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

type epmdPortPleaseRequest struct {
	TargetRequest
	NodeName string `json:"nodeName"`
}

func (s *Server) registerTextline(mux *http.ServeMux) {
	mux.HandleFunc("/api/smtp/probe", s.handleSMTPProbe)
	mux.HandleFunc("/api/ftp/login", s.handleFTPLogin)
	mux.HandleFunc("/api/pop3/auth", s.handlePOP3Auth)
	mux.HandleFunc("/api/epmd/names", s.handleEPMDNames)
	mux.HandleFunc("/api/epmd/portplease", s.handleEPMDPortPlease)
}

func (s *Server) handleSMTPProbe(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req smtpRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, textlineRange, false)
	if !ok {
		return
	}
	res, err := textline.SMTPProbe(r.Context(), textline.SMTPParams{Target: target, Helo: req.Helo})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleFTPLogin(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req ftpRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, textlineRange, false)
	if !ok {
		return
	}
	res, err := textline.Login(r.Context(), textline.FTPParams{Target: target, Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handlePOP3Auth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req pop3Request
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, textlineRange, false)
	if !ok {
		return
	}
	res, err := textline.Auth(r.Context(), textline.POP3Params{Target: target, Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleEPMDNames(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req TargetRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req, textlineRange, false)
	if !ok {
		return
	}
	res, err := textline.Names(r.Context(), target)
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleEPMDPortPlease(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req epmdPortPleaseRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, textlineRange, false)
	if !ok {
		return
	}
	res, err := textline.PortPlease(r.Context(), textline.EPMDPortParams{Target: target, NodeName: req.NodeName})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
