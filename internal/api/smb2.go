/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package api

import (
	"encoding/base64"
	"net/http"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/protocols/smb2"
)

var smb2Range = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type smb2Request struct {
	TargetRequest
	Share    string `json:"share"`
	Username string `json:"username"`
	Password string `json:"password"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Data     string `json:"data,omitempty"` // base64, /write only
}

func (s *Server) registerSMB2(mux *http.ServeMux) {
	mux.HandleFunc("/api/smb2/probe", s.handleSMB2Probe)
	mux.HandleFunc("/api/smb2/list", s.handleSMB2List)
	mux.HandleFunc("/api/smb2/read", s.handleSMB2Read)
	mux.HandleFunc("/api/smb2/write", s.handleSMB2Write)
	mux.HandleFunc("/api/smb2/stat", s.handleSMB2Stat)
}

func (s *Server) decodeSMB2(w http.ResponseWriter, r *http.Request) (smb2Request, smb2.Params, bool) {
	var req smb2Request
	if !requireMethod(w, r, http.MethodPost) {
		return req, smb2.Params{}, false
	}
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return req, smb2.Params{}, false
	}
	target, ok := s.authorize(w, req.TargetRequest, smb2Range, false)
	if !ok {
		return req, smb2.Params{}, false
	}
	return req, smb2.Params{Target: target, Share: req.Share, Username: req.Username, Password: req.Password, Domain: req.Domain}, true
}

func (s *Server) handleSMB2Probe(w http.ResponseWriter, r *http.Request) {
	_, params, ok := s.decodeSMB2(w, r)
	if !ok {
		return
	}
	res, err := smb2.Probe(r.Context(), params)
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleSMB2List(w http.ResponseWriter, r *http.Request) {
	req, params, ok := s.decodeSMB2(w, r)
	if !ok {
		return
	}
	res, err := smb2.List(r.Context(), smb2.ListParams{Params: params, Path: req.Path})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleSMB2Read(w http.ResponseWriter, r *http.Request) {
	req, params, ok := s.decodeSMB2(w, r)
	if !ok {
		return
	}
	res, err := smb2.Read(r.Context(), smb2.ReadParams{Params: params, Path: req.Path})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, struct {
		BytesRead int    `json:"bytesRead"`
		IsText    bool   `json:"isText"`
		Content   string `json:"content"`
	}{res.BytesRead, res.IsText, base64.StdEncoding.EncodeToString(res.Content)})
}

func (s *Server) handleSMB2Write(w http.ResponseWriter, r *http.Request) {
	req, params, ok := s.decodeSMB2(w, r)
	if !ok {
		return
	}
	data, derr := base64.StdEncoding.DecodeString(req.Data)
	if derr != nil {
		writeError(w, ecode.New(ecode.Validation, "data must be base64-encoded"), false)
		return
	}
	res, err := smb2.Write(r.Context(), smb2.WriteParams{Params: params, Path: req.Path, Data: data})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleSMB2Stat(w http.ResponseWriter, r *http.Request) {
	req, params, ok := s.decodeSMB2(w, r)
	if !ok {
		return
	}
	res, err := smb2.Stat(r.Context(), smb2.StatParams{Params: params, Path: req.Path})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
