package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/guild-verify/internal/config"
	"github.com/guild-verify/internal/transport/http/handler"
	appmiddleware "github.com/guild-verify/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds background
// cleanup owned by the router.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 per client IP on the token endpoints.
	tokenRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, cfg.TrustProxyHeaders)
	requireReady := appmiddleware.RequireReady(deps.Bot)

	healthH := handler.NewHealthHandler(deps.Bot)
	challengeH := handler.NewChallengeHandler(deps.Challenges, deps.Logger)
	verifyH := handler.NewVerificationHandler(deps.Verification, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthH.Health)

		r.Group(func(r chi.Router) {
			r.Use(tokenRL.Limit)
			r.Get("/challenge", challengeH.Challenge)
			r.Get("/captcha", challengeH.Challenge)
			r.Post("/liveness", challengeH.Liveness)
			r.Post("/bot-check", challengeH.Liveness)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireReady)
			r.Post("/request-verification", verifyH.Request)
			r.Post("/confirm-verification", verifyH.Confirm)
			r.Post("/verify-code", verifyH.Confirm)
		})
	})

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
