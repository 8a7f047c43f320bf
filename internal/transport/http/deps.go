package http

import (
	"log/slog"

	"github.com/guild-verify/internal/application/verification"
	"github.com/guild-verify/internal/transport/http/handler"
)

// Deps holds the application services the router exposes.
type Deps struct {
	Verification verification.Service
	Challenges   handler.ChallengeIssuer
	// Bot drives /api/health and gates the workflow routes.
	Bot    handler.BotStatus
	Logger *slog.Logger
}
