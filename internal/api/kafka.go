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

	"github.com/rossgg/portofcall/internal/protocols/kafka"
)

var kafkaRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

type kafkaMetadataRequest struct {
	RawTargetRequest
}

type kafkaSASLRequest struct {
	RawTargetRequest
	Mechanism string `json:"mechanism"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func (s *Server) registerKafka(mux *http.ServeMux) {
	mux.HandleFunc("/api/kafka/metadata", s.handleKafkaMetadata)
	mux.HandleFunc("/api/kafka/saslcheck", s.handleKafkaSASLCheck)
}

func (s *Server) handleKafkaMetadata(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req kafkaMetadataRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	host, port, ms, ok := s.authorizeRaw(w, req.RawTargetRequest, kafkaRange)
	if !ok {
		return
	}
	res, err := kafka.Metadata(kafka.MetadataParams{Host: host, Port: port, DeadlineMs: ms})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}

func (s *Server) handleKafkaSASLCheck(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req kafkaSASLRequest
	if verr := decodeJSON(r, &req); verr != nil {
		writeError(w, verr, false)
		return
	}
	host, port, ms, ok := s.authorizeRaw(w, req.RawTargetRequest, kafkaRange)
	if !ok {
		return
	}
	res, err := kafka.SASLCheck(kafka.SASLParams{
		Host: host, Port: port, DeadlineMs: ms, Mechanism: req.Mechanism, Username: req.Username, Password: req.Password,
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeSuccess(w, res)
}
