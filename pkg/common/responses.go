package common

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes data as the response body. Handlers build their own
// envelopes, so nothing is wrapped here.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ParseJSONBody decodes a JSON request body into v, rejecting unknown
// fields and bodies larger than maxBytes.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
