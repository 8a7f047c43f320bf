package handler

import (
	"net/http"
	"time"
)

// BotStatus exposes the chat platform session state.
type BotStatus interface {
	Ready() bool
	StateName() string
}

// HealthHandler reports liveness of the process and readiness of the bot.
type HealthHandler struct {
	bot BotStatus
	now func() time.Time
}

func NewHealthHandler(bot BotStatus) *HealthHandler {
	return &HealthHandler{bot: bot, now: time.Now}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	ready := h.bot.Ready()
	writeJSON(w, http.StatusOK, HealthEnvelope{
		Status:    "ok",
		Ready:     ready,
		BotReady:  ready,
		State:     h.bot.StateName(),
		Timestamp: h.now().UTC(),
	})
}
