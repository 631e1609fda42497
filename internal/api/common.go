/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package api

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

// hostPattern is the spec's `[A-Za-z0-9._:-]+` host validation rule.
var hostPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// TLSRequest is the JSON shape of Target.tls.
type TLSRequest struct {
	Enabled            bool   `json:"enabled"`
	SNIHost            string `json:"sniHost,omitempty"`
	ALPN               string `json:"alpn,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty"`
}

// TargetRequest is the common host/port/timeout/tls envelope every
// endpoint's request body embeds.
type TargetRequest struct {
	Host      string      `json:"host"`
	Port      int         `json:"port"`
	TimeoutMs int         `json:"timeoutMs"`
	TLS       *TLSRequest `json:"tls,omitempty"`
}

// validationRange bounds the accepted timeoutMs for one endpoint;
// defaultMs is substituted when the caller omits the field.
type validationRange struct {
	minMs, maxMs, defaultMs int
}

var defaultTimeoutRange = validationRange{minMs: 1, maxMs: 30000, defaultMs: 10000}

// validate checks host/port/timeout per spec 4.5 step 3 and returns a
// transport.Target ready for session.Run.
func (t TargetRequest) validate(skipPort bool, tr validationRange) (transport.Target, *ecode.Error) {
	if t.Host == `` || !hostPattern.MatchString(t.Host) {
		return transport.Target{}, ecode.New(ecode.Validation, "host is required and must match [A-Za-z0-9._:-]+")
	}
	if !skipPort && (t.Port < 1 || t.Port > 65535) {
		return transport.Target{}, ecode.New(ecode.Validation, "port must be between 1 and 65535")
	}
	ms := t.TimeoutMs
	if ms == 0 {
		ms = tr.defaultMs
	}
	if ms < tr.minMs || ms > tr.maxMs {
		return transport.Target{}, ecode.New(ecode.Validation, "timeoutMs out of range for this endpoint")
	}
	target := transport.Target{Host: t.Host, Port: t.Port, DeadlineMs: ms}
	if t.TLS != nil && t.TLS.Enabled {
		target.TLS = &transport.TLSOptions{
			Enabled:            true,
			SNIHost:            t.TLS.SNIHost,
			ALPN:               t.TLS.ALPN,
			InsecureSkipVerify: t.TLS.InsecureSkipVerify,
		}
	}
	return target, nil
}

// RawTargetRequest is the host/port/timeout envelope used by the
// UDP-native and library-owned-socket protocols (snmp, ipmi, kafka,
// amqp 1.0, websocket), which take a raw host/port rather than a
// transport.Target since they never go through engine/transport.
type RawTargetRequest struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	TimeoutMs int    `json:"timeoutMs"`
}

func (t RawTargetRequest) validate(tr validationRange) (host string, port, ms int, verr *ecode.Error) {
	if t.Host == `` || !hostPattern.MatchString(t.Host) {
		return ``, 0, 0, ecode.New(ecode.Validation, "host is required and must match [A-Za-z0-9._:-]+")
	}
	if t.Port < 1 || t.Port > 65535 {
		return ``, 0, 0, ecode.New(ecode.Validation, "port must be between 1 and 65535")
	}
	ms = t.TimeoutMs
	if ms == 0 {
		ms = tr.defaultMs
	}
	if ms < tr.minMs || ms > tr.maxMs {
		return ``, 0, 0, ecode.New(ecode.Validation, "timeoutMs out of range for this endpoint")
	}
	return t.Host, t.Port, ms, nil
}

// authorizeRaw is RawTargetRequest's equivalent of Server.authorize.
func (s *Server) authorizeRaw(w http.ResponseWriter, t RawTargetRequest, tr validationRange) (string, int, int, bool) {
	host, port, ms, verr := t.validate(tr)
	if verr != nil {
		writeError(w, verr, false)
		return ``, 0, 0, false
	}
	if s.Blocked(host) {
		writeError(w, ecode.New(ecode.Blocked, "target blocked by policy"), false)
		return ``, 0, 0, false
	}
	return host, port, ms, true
}

// decodeJSON reads and decodes a JSON request body into v, returning a
// VALIDATION error on any failure (empty body, malformed JSON, unknown
// fields are tolerated).
func decodeJSON(r *http.Request, v interface{}) *ecode.Error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return ecode.New(ecode.Validation, "malformed JSON request body: "+err.Error())
	}
	return nil
}

// writeJSON writes v as the JSON body with the given HTTP status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the generic {success:false, ...} shape used for
// protocol-level and validation failures.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"errorKind,omitempty"`
}

// writeError maps err's ecode.Kind to an HTTP status and JSON body per
// spec 6.1/7. allow504 lets the handful of endpoints that adopt the
// 504-on-timeout convention (HL7's four endpoints among them) opt in;
// everyone else reports a timeout as a 200 with success:false.
func writeError(w http.ResponseWriter, err error, allow504 bool) {
	kind := ecode.KindOf(err)
	switch kind {
	case ecode.Validation:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: string(kind)})
	case ecode.Blocked:
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"success": false, "isCloudflare": true})
	case ecode.Timeout:
		if allow504 {
			writeJSON(w, http.StatusGatewayTimeout, errorBody{Error: "Connection timeout", Kind: string(kind)})
		} else {
			writeJSON(w, http.StatusOK, errorBody{Error: "Connection timeout", Kind: string(kind)})
		}
	case ecode.DNS, ecode.Refused, ecode.TLSFail, ecode.Internal:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: string(kind)})
	default:
		// SHORT_READ, LIMIT_EXCEEDED, MALFORMED, UNEXPECTED_MSG,
		// AUTH_FAIL, AUTH_FAIL_VERIFY, PROTOCOL_ERROR: the probe ran and
		// got a definitive answer, so it's a 200 with success:false.
		writeJSON(w, http.StatusOK, errorBody{Success: false, Error: err.Error(), Kind: string(kind)})
	}
}

// requireMethod enforces the method constraint from spec 4.5 step 1,
// writing a 405 and returning false on mismatch.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return false
	}
	return true
}

// authorize runs spec 4.5 steps 3-4 (validate, then the target-block
// check) given an already-decoded TargetRequest, writing the
// appropriate error response and returning ok=false on failure.
func (s *Server) authorize(w http.ResponseWriter, t TargetRequest, tr validationRange, skipPort bool) (transport.Target, bool) {
	target, verr := t.validate(skipPort, tr)
	if verr != nil {
		writeError(w, verr, false)
		return transport.Target{}, false
	}
	if s.Blocked(t.Host) {
		writeError(w, ecode.New(ecode.Blocked, "target blocked by policy"), false)
		return transport.Target{}, false
	}
	return target, true
}

// writeSuccess marshals v and injects "success":true if the struct
// didn't already set its own success field, matching the spec's
// `{success:true, ...}` convention for most endpoints' happy path.
func writeSuccess(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to encode response"})
		return
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to encode response"})
		return
	}
	if _, ok := m["success"]; !ok {
		m["success"] = true
	}
	writeJSON(w, http.StatusOK, m)
}
