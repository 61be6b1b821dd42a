package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"git.home.luguber.info/inful/svcerr/internal/logfields"
	"git.home.luguber.info/inful/svcerr/internal/observability"
)

// writeJSON encodes v into a buffer before touching w, so an encoding
// failure leaves the response unwritten for the caller's error adapter.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	return encodeTo(w, nil, status, v, "")
}

// writeJSONPretty indents the body when the request asks for ?pretty=1 or ?pretty=true.
func writeJSONPretty(w http.ResponseWriter, r *http.Request, status int, v any) error {
	indent := ""
	if r != nil {
		if p := r.URL.Query().Get("pretty"); p == "1" || p == "true" {
			indent = "  "
		}
	}
	return encodeTo(w, r, status, v, indent)
}

func encodeTo(w http.ResponseWriter, r *http.Request, status int, v any, indent string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		ctx := context.Background()
		if r != nil {
			ctx = r.Context()
		}
		observability.NewLogBuilder(ctx).Attrs(logfields.Error(err)).Warn("Failed writing JSON response")
		return err
	}
	return nil
}
