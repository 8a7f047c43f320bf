package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guild-verify/internal/application/challenge"
	"github.com/guild-verify/internal/application/session"
	"github.com/guild-verify/internal/application/verification"
	"github.com/guild-verify/internal/config"
	"github.com/guild-verify/internal/infrastructure/discord"
	"github.com/guild-verify/internal/infrastructure/dynamo"
	"github.com/guild-verify/internal/infrastructure/memory"
	"github.com/guild-verify/internal/infrastructure/sns"
	"github.com/guild-verify/internal/pkg/logging"
	transporthttp "github.com/guild-verify/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	issuer := challenge.NewIssuer(challenge.Options{TTL: cfg.ChallengeTTL, Logger: logger})
	sessions := session.NewManager(cfg.CodeTTL, nil)
	limiter := memory.NewWindowLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, nil)
	go issuer.Run(rootCtx, cfg.SweepInterval)
	go sessions.Run(rootCtx, cfg.SweepInterval)
	go limiter.Run(rootCtx, cfg.SweepInterval)

	bot, err := discord.New(cfg.BotToken, cfg.GuildID, logger)
	if err != nil {
		log.Fatalf("discord session: %v", err)
	}
	// The page and health endpoint stay up while the bot is down; workflow
	// routes answer 503 until the gateway reports ready.
	if err := bot.Open(); err != nil {
		logger.Error("discord login failed", "err", err)
	}

	deps := verification.ServiceDeps{
		Limiter:     limiter,
		Challenges:  issuer,
		Sessions:    sessions,
		Guild:       bot,
		Messenger:   bot,
		PrivilegeID: cfg.RoleID,
		CodeTTL:     cfg.CodeTTL,
		AuditTTL:    cfg.AuditTTL(),
		Logger:      logger,
	}

	// Audit log (optional).
	if cfg.AuditTable != "" {
		dynamoClient, err := dynamo.NewClient(cfg)
		if err != nil {
			logger.Warn("audit log not available", "err", err)
		} else {
			dynamo.Bootstrap(rootCtx, dynamoClient, cfg.AuditTable)
			deps.Audit = dynamo.NewAuditRepo(dynamoClient, cfg.AuditTable)
		}
	}

	// Operator alerts (optional).
	if cfg.SNSAlertTopicARN != "" {
		if alerter, err := sns.NewAlerter(cfg); err == nil {
			deps.Alerter = alerter
		} else {
			logger.Warn("SNS alerter not available", "err", err)
		}
	}

	router := transporthttp.NewRouter(rootCtx, cfg, &transporthttp.Deps{
		Verification: verification.NewService(deps),
		Challenges:   issuer,
		Bot:          bot,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	stop()
	if err := bot.Close(); err != nil {
		log.Printf("discord close: %v", err)
	}
	log.Println("Server stopped")
}
