package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/guild-verify/internal/application/verification"
)

// VerificationHandler serves the request and confirm workflow endpoints.
type VerificationHandler struct {
	svc verification.Service
	log *slog.Logger
}

func NewVerificationHandler(svc verification.Service, log *slog.Logger) *VerificationHandler {
	return &VerificationHandler{svc: svc, log: log}
}

// answer accepts a JSON number or string.
type answer string

func (a *answer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = answer(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("captchaAnswer must be a number or string")
	}
	if i, err := n.Int64(); err == nil {
		*a = answer(strconv.FormatInt(i, 10))
		return nil
	}
	*a = answer(n.String())
	return nil
}

type requestVerificationBody struct {
	UserID        string `json:"userId"`
	CaptchaToken  string `json:"captchaToken"`
	CaptchaAnswer answer `json:"captchaAnswer"`
	BotCheckToken string `json:"botCheckToken"`
	Fingerprint   string `json:"fingerprint"`
}

type confirmVerificationBody struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

func (h *VerificationHandler) Request(w http.ResponseWriter, r *http.Request) {
	var body requestVerificationBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}
	err := h.svc.RequestVerification(r.Context(), verification.RequestVerificationRequest{
		Identity:        body.UserID,
		ChallengeToken:  body.CaptchaToken,
		ChallengeAnswer: string(body.CaptchaAnswer),
		LivenessToken:   body.BotCheckToken,
		Fingerprint:     body.Fingerprint,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Code sent successfully!"})
}

func (h *VerificationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var body confirmVerificationBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return
	}
	res, err := h.svc.ConfirmVerification(r.Context(), verification.ConfirmVerificationRequest{
		Identity: body.UserID,
		Code:     body.Code,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msg := "Verification completed successfully!"
	if res != nil && res.AlreadyHeld {
		msg = "Verification completed. You already had the role."
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: msg})
}

func (h *VerificationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, code := httpError(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "verification request failed", "path", r.URL.Path, "code", code, "err", err)
	}
	writeError(w, status, msg, code)
}
