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

	"github.com/rossgg/portofcall/internal/protocols/thrift"
)

var thriftRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type thriftProbeRequest struct {
	TargetRequest
	MethodName string `json:"methodName"`
	SeqID      int32  `json:"seqId"`
}

type thriftCallField struct {
	Type  byte        `json:"type"`
	ID    int16       `json:"id"`
	Value interface{} `json:"value"`
}

type thriftCallRequest struct {
	TargetRequest
	MethodName string            `json:"methodName"`
	SeqID      int32             `json:"seqId"`
	Fields     []thriftCallField `json:"fields"`
}

func (s *Server) registerThrift(mux *http.ServeMux) {
	mux.HandleFunc("/api/thrift/probe", s.handleThriftProbe)
	mux.HandleFunc("/api/thrift/call", s.handleThriftCall)
}

func (s *Server) handleThriftProbe(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req thriftProbeRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, thriftRange, false)
	if !ok {
		return
	}
	res, err := thrift.Probe(r.Context(), thrift.Params{Target: target, MethodName: req.MethodName, SeqID: req.SeqID})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleThriftCall(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req thriftCallRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	target, ok := s.authorize(w, req.TargetRequest, thriftRange, false)
	if !ok {
		return
	}
	fields := make([]thrift.CallField, len(req.Fields))
	for i, f := range req.Fields {
		fields[i] = thrift.CallField{Type: f.Type, ID: f.ID, Value: f.Value}
	}
	res, err := thrift.Call(r.Context(), thrift.CallParams{
		Params: thrift.Params{Target: target, MethodName: req.MethodName, SeqID: req.SeqID},
		Fields: fields,
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
