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
	"github.com/rossgg/portofcall/internal/protocols/httpprobe"
)

var httpprobeRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type httpGenericRequest struct {
	TargetRequest
	Method      string `json:"method"`
	Path        string `json:"path"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	ContentType string `json:"contentType"`
	Body        string `json:"body,omitempty"` // base64
}

type icecastRequest struct {
	TargetRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

type rpcCallRequest struct {
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

type jsonrpcCallRequest struct {
	TargetRequest
	Path   string         `json:"path"`
	Call   rpcCallRequest `json:"call"`
}

type jsonrpcBatchRequest struct {
	TargetRequest
	Path  string           `json:"path"`
	Calls []rpcCallRequest `json:"calls"`
}

type rabbitmqRequest struct {
	TargetRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

type vaultRequest struct {
	TargetRequest
	MountPath  string `json:"mountPath"`
	Role       string `json:"role"`
	Subject    string `json:"subject"`
	Audience   string `json:"audience"`
	SigningKey string `json:"signingKey"`
}

func (s *Server) registerHTTPProbe(mux *http.ServeMux) {
	mux.HandleFunc("/api/http/request", s.handleHTTPRequest)
	mux.HandleFunc("/api/icecast/adminstats", s.handleIcecastAdminStats)
	mux.HandleFunc("/api/jsonrpc/call", s.handleJSONRPCCall)
	mux.HandleFunc("/api/jsonrpc/batch", s.handleJSONRPCBatch)
	mux.HandleFunc("/api/rabbitmq/overview", s.handleRabbitMQOverview)
	mux.HandleFunc("/api/vault/jwtlogin", s.handleVaultJWTLogin)
}

func (s *Server) handleHTTPRequest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req httpGenericRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, httpprobeRange, false)
	if !ok {
		return
	}
	var body []byte
	if req.Body != "" {
		b, derr := base64.StdEncoding.DecodeString(req.Body)
		if derr != nil {
			writeError(w, ecode.New(ecode.Validation, "body must be base64-encoded"), false)
			return
		}
		body = b
	}
	res, err := httpprobe.Request(r.Context(), httpprobe.GenericParams{
		Target: target, Method: req.Method, Path: req.Path, Username: req.Username,
		Password: req.Password, ContentType: req.ContentType, Body: body,
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, struct {
		StatusCode int    `json:"statusCode"`
		StatusLine string `json:"statusLine"`
		Body       string `json:"body"`
		UsedDigest bool   `json:"usedDigest"`
	}{res.StatusCode, res.StatusLine, base64.StdEncoding.EncodeToString(res.Body), res.UsedDigest})
}

func (s *Server) handleIcecastAdminStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req icecastRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, httpprobeRange, false)
	if !ok {
		return
	}
	res, err := httpprobe.AdminStats(r.Context(), httpprobe.IcecastParams{Target: target, Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleJSONRPCCall(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req jsonrpcCallRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, httpprobeRange, false)
	if !ok {
		return
	}
	res, err := httpprobe.Call(r.Context(), httpprobe.JSONRPCParams{
		Target: target, Path: req.Path,
		Call: httpprobe.RPCCall{Method: req.Call.Method, Params: req.Call.Params},
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleJSONRPCBatch(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req jsonrpcBatchRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, httpprobeRange, false)
	if !ok {
		return
	}
	calls := make([]httpprobe.RPCCall, len(req.Calls))
	for i, c := range req.Calls {
		calls[i] = httpprobe.RPCCall{Method: c.Method, Params: c.Params}
	}
	res, err := httpprobe.Batch(r.Context(), httpprobe.BatchParams{Target: target, Path: req.Path, Calls: calls})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, struct {
		Results []httpprobe.RPCResult `json:"results"`
	}{res})
}

func (s *Server) handleRabbitMQOverview(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req rabbitmqRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, httpprobeRange, false)
	if !ok {
		return
	}
	res, err := httpprobe.Overview(r.Context(), httpprobe.RabbitMQParams{Target: target, Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleVaultJWTLogin(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req vaultRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, httpprobeRange, false)
	if !ok {
		return
	}
	res, err := httpprobe.JWTLogin(r.Context(), httpprobe.VaultParams{
		Target: target, MountPath: req.MountPath, Role: req.Role,
		Subject: req.Subject, Audience: req.Audience, SigningKey: req.SigningKey,
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
