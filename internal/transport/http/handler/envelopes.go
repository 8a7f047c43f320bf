package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 10 << 20

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ChallengeEnvelope carries an arithmetic challenge.
type ChallengeEnvelope struct {
	Token    string `json:"token"`
	Question string `json:"question"`
}

// TokenEnvelope carries a liveness token.
type TokenEnvelope struct {
	Token string `json:"token"`
}

// HealthEnvelope reports process and bot status.
type HealthEnvelope struct {
	Status    string    `json:"status"`
	Ready     bool      `json:"ready"`
	BotReady  bool      `json:"botReady"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, Code: code})
}

// decode reads a size-capped JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
