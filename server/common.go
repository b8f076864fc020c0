// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package server

import (
	"encoding/json"
	"net/http"

	"github.com/zeebo/errs"
)

// Error is default error class for server package.
var Error = errs.Class("server")

// sendJSONData writes an already-marshaled JSON body.
func sendJSONData(w http.ResponseWriter, statusCode int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}

// sendJSON marshals payload and writes it, falling back to a plain 500
// when marshaling fails.
func sendJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		sendJSONError(w, "failed to marshal response", err.Error(), http.StatusInternalServerError)
		return
	}
	sendJSONData(w, statusCode, data)
}

// sendJSONError writes a JSON error to the HTTP response.
func sendJSONError(w http.ResponseWriter, errMsg, detail string, statusCode int) {
	errStr := struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}{
		Error:  errMsg,
		Detail: detail,
	}
	body, err := json.Marshal(errStr)
	if err != nil {
		http.Error(w, errMsg, statusCode)
		return
	}
	sendJSONData(w, statusCode, body)
}
