package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/guild-verify/internal/application/verification"
	"github.com/guild-verify/internal/domain"
	"github.com/guild-verify/internal/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) RequestVerification(ctx context.Context, req verification.RequestVerificationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockVerificationSvc) ConfirmVerification(ctx context.Context, req verification.ConfirmVerificationRequest) (*verification.ConfirmResult, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*verification.ConfirmResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func discardLogger() *slog.Logger { return logging.Discard() }

func postJSON(t *testing.T, h http.HandlerFunc, body string) (*httptest.ResponseRecorder, MessageEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return rr, env
}

// --- tests ---

func TestRequest_Success(t *testing.T) {
	svc := new(mockVerificationSvc)
	want := verification.RequestVerificationRequest{
		Identity:        "123456789012345678",
		ChallengeToken:  "ct",
		ChallengeAnswer: "8",
		LivenessToken:   "lt",
		Fingerprint:     "fp",
	}
	svc.On("RequestVerification", mock.Anything, want).Return(nil)

	h := NewVerificationHandler(svc, discardLogger())
	rr, env := postJSON(t, h.Request, `{"userId":"123456789012345678","captchaToken":"ct","captchaAnswer":8,"botCheckToken":"lt","fingerprint":"fp"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Message)
	svc.AssertExpectations(t)
}

func TestRequest_AnswerAsString(t *testing.T) {
	svc := new(mockVerificationSvc)
	svc.On("RequestVerification", mock.Anything, mock.MatchedBy(func(r verification.RequestVerificationRequest) bool {
		return r.ChallengeAnswer == " 12 "
	})).Return(nil)

	h := NewVerificationHandler(svc, discardLogger())
	rr, _ := postJSON(t, h.Request, `{"userId":"123456789012345678","captchaAnswer":" 12 "}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestRequest_AnswerWrongType(t *testing.T) {
	svc := new(mockVerificationSvc)
	h := NewVerificationHandler(svc, discardLogger())
	rr, env := postJSON(t, h.Request, `{"userId":"123456789012345678","captchaAnswer":true}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_input", env.Code)
	svc.AssertNotCalled(t, "RequestVerification", mock.Anything, mock.Anything)
}

func TestRequest_MalformedBody(t *testing.T) {
	h := NewVerificationHandler(new(mockVerificationSvc), discardLogger())
	rr, env := postJSON(t, h.Request, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_input", env.Code)
}

func TestRequest_BodyTooLarge(t *testing.T) {
	h := NewVerificationHandler(new(mockVerificationSvc), discardLogger())
	big := `{"userId":"` + strings.Repeat("1", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(big))
	rr := httptest.NewRecorder()
	h.Request(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequest_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidIdentity, http.StatusBadRequest, "invalid_identity"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{domain.ErrChallengeRequired, http.StatusBadRequest, "challenge_required"},
		{domain.ErrChallengeInvalid, http.StatusBadRequest, "challenge_invalid"},
		{domain.ErrLivenessRequired, http.StatusBadRequest, "liveness_required"},
		{domain.ErrLivenessInvalid, http.StatusBadRequest, "liveness_invalid"},
		{domain.ErrIdentityNotFound, http.StatusNotFound, "identity_not_found"},
		{withCause(domain.ErrDeliveryFailed), http.StatusInternalServerError, "delivery_failed"},
		{domain.ErrNotReady, http.StatusServiceUnavailable, "not_ready"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			svc := new(mockVerificationSvc)
			svc.On("RequestVerification", mock.Anything, mock.Anything).Return(tc.err)

			h := NewVerificationHandler(svc, discardLogger())
			rr, env := postJSON(t, h.Request, `{"userId":"123456789012345678"}`)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.code, env.Code)
			assert.NotEmpty(t, env.Error)
			assert.False(t, env.Success)
		})
	}
}

func TestConfirm_Success(t *testing.T) {
	svc := new(mockVerificationSvc)
	svc.On("ConfirmVerification", mock.Anything, verification.ConfirmVerificationRequest{
		Identity: "123456789012345678", Code: "ab12c",
	}).Return(&verification.ConfirmResult{}, nil)

	h := NewVerificationHandler(svc, discardLogger())
	rr, env := postJSON(t, h.Confirm, `{"userId":"123456789012345678","code":"ab12c"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Verification completed successfully!", env.Message)
}

func TestConfirm_AlreadyHeld(t *testing.T) {
	svc := new(mockVerificationSvc)
	svc.On("ConfirmVerification", mock.Anything, mock.Anything).
		Return(&verification.ConfirmResult{AlreadyHeld: true}, nil)

	h := NewVerificationHandler(svc, discardLogger())
	rr, env := postJSON(t, h.Confirm, `{"userId":"123456789012345678","code":"AB12C"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.Contains(t, env.Message, "already had the role")
}

func TestConfirm_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{domain.ErrCodeNotFound, http.StatusBadRequest, "code_not_found"},
		{domain.ErrCodeExpired, http.StatusBadRequest, "code_expired"},
		{domain.ErrCodeMismatch, http.StatusBadRequest, "code_mismatch"},
		{withCause(domain.ErrGrantFailed), http.StatusInternalServerError, "grant_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			svc := new(mockVerificationSvc)
			svc.On("ConfirmVerification", mock.Anything, mock.Anything).Return(nil, tc.err)

			h := NewVerificationHandler(svc, discardLogger())
			rr, env := postJSON(t, h.Confirm, `{"userId":"123456789012345678","code":"AB12C"}`)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.code, env.Code)
		})
	}
}

func withCause(err error) error { return errors.Join(err, errors.New("cause")) }
