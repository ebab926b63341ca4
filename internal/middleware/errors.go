package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	WriteJSON(w, status, ErrorBody{Error: msg, Kind: kind})
}

// WriteError writes an ErrorBody with the given status.
func WriteError(w http.ResponseWriter, status int, msg, kind string) {
	writeError(w, status, msg, kind)
}

// WriteJSON encodes v as the response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
