package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/guild-verify/internal/domain"
	"github.com/guild-verify/internal/pkg/validate"
)

// ChallengeIssuer hands out challenge and liveness tokens.
type ChallengeIssuer interface {
	IssueChallenge(ctx context.Context) (*domain.Challenge, error)
	IssueLiveness(ctx context.Context, fingerprint string) (string, error)
}

// ChallengeHandler serves the anti-automation endpoints.
type ChallengeHandler struct {
	issuer ChallengeIssuer
	log    *slog.Logger
}

func NewChallengeHandler(issuer ChallengeIssuer, log *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{issuer: issuer, log: log}
}

type livenessRequest struct {
	Fingerprint string `json:"fingerprint" validate:"required,max=512"`
}

func (h *ChallengeHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	c, err := h.issuer.IssueChallenge(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "issue challenge", "err", err)
		writeError(w, http.StatusInternalServerError, "Could not generate captcha", "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, ChallengeEnvelope{Token: c.Token, Question: c.Question})
}

func (h *ChallengeHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	var req livenessRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fingerprint", "invalid_input")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fingerprint", "invalid_input")
		return
	}
	token, err := h.issuer.IssueLiveness(r.Context(), req.Fingerprint)
	if err != nil {
		h.log.ErrorContext(r.Context(), "issue liveness token", "err", err)
		writeError(w, http.StatusInternalServerError, "Could not generate browser verification", "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Token: token})
}
