package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readyFlag bool

func (r readyFlag) Ready() bool { return bool(r) }

func TestRequireReady_NotReady(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireReady(readyFlag(false))(http.HandlerFunc(okHandler)).
		ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body["code"])
}

func TestRequireReady_Ready(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireReady(readyFlag(true))(http.HandlerFunc(okHandler)).
		ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}
