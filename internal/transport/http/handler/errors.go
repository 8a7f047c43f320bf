package handler

import (
	"errors"
	"net/http"

	"github.com/guild-verify/internal/domain"
)

type errorMapping struct {
	target error
	status int
	msg    string
	code   string
}

// Order matters: a grant failure after the account left the guild wraps both
// ErrGrantFailed and ErrIdentityNotFound and must be reported as the former.
var errorMappings = []errorMapping{
	{domain.ErrGrantFailed, http.StatusInternalServerError, "Could not add the role. Please try again.", "grant_failed"},
	{domain.ErrDeliveryFailed, http.StatusInternalServerError, "Could not send the message. Check that your direct messages are enabled.", "delivery_failed"},
	{domain.ErrNotReady, http.StatusServiceUnavailable, "Bot is not ready yet. Please try again in a moment.", "not_ready"},
	{domain.ErrIdentityNotFound, http.StatusNotFound, "User not found in the server", "identity_not_found"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "Too many attempts. Wait a minute.", "rate_limited"},
	{domain.ErrInvalidIdentity, http.StatusBadRequest, "Invalid Discord ID", "invalid_identity"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "ID and a valid code are required", "invalid_input"},
	{domain.ErrChallengeRequired, http.StatusBadRequest, "Captcha is required", "challenge_required"},
	{domain.ErrChallengeInvalid, http.StatusBadRequest, "Captcha expired or incorrect", "challenge_invalid"},
	{domain.ErrLivenessRequired, http.StatusBadRequest, "Browser verification required", "liveness_required"},
	{domain.ErrLivenessInvalid, http.StatusBadRequest, "Browser verification invalid", "liveness_invalid"},
	{domain.ErrCodeNotFound, http.StatusBadRequest, "Code not found. Request a new code.", "code_not_found"},
	{domain.ErrCodeExpired, http.StatusBadRequest, "Code expired. Request a new code.", "code_expired"},
	{domain.ErrCodeMismatch, http.StatusBadRequest, "Incorrect code", "code_mismatch"},
	{domain.ErrUnavailable, http.StatusServiceUnavailable, "Service temporarily unavailable", "unavailable"},
}

// httpError maps a workflow error to a status, user-facing message and code.
func httpError(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.msg, m.code
		}
	}
	return http.StatusInternalServerError, "Internal server error", "internal_error"
}
