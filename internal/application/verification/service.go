package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/guild-verify/internal/domain"
	"github.com/guild-verify/internal/pkg/id"
	"github.com/guild-verify/internal/pkg/validate"
)

// RequestVerificationRequest carries everything a client presents to have a
// code sent to its account.
type RequestVerificationRequest struct {
	Identity        string
	ChallengeToken  string
	ChallengeAnswer string
	LivenessToken   string
	Fingerprint     string
}

type ConfirmVerificationRequest struct {
	Identity string
	Code     string
}

// ConfirmResult describes a successful confirmation.
type ConfirmResult struct {
	// AlreadyHeld is set when the account had the role before confirming.
	AlreadyHeld bool
}

type Service interface {
	RequestVerification(ctx context.Context, req RequestVerificationRequest) error
	ConfirmVerification(ctx context.Context, req ConfirmVerificationRequest) (*ConfirmResult, error)
}

// Limiter throttles workflow calls per identity.
type Limiter interface {
	Allow(identity string) bool
}

// Challenges redeems the anti-automation tokens.
type Challenges interface {
	ValidateChallenge(ctx context.Context, token, answer string) bool
	ValidateLiveness(ctx context.Context, token, fingerprint string) bool
}

// Sessions issues and confirms one-time codes.
type Sessions interface {
	Start(identity string) (string, error)
	Confirm(identity, code string) error
}

// Messenger delivers a direct message to an account.
type Messenger interface {
	SendDirectMessage(ctx context.Context, identity, text string) error
}

// Guild resolves accounts and assigns roles. FetchAccount returns an error
// wrapping domain.ErrIdentityNotFound when the account is not a member.
type Guild interface {
	FetchAccount(ctx context.Context, identity string) (*domain.Account, error)
	HasPrivilege(account *domain.Account, privilegeID string) bool
	GrantPrivilege(ctx context.Context, account *domain.Account, privilegeID string) error
}

// AuditLog stores confirmation outcomes.
type AuditLog interface {
	Put(ctx context.Context, rec *domain.VerificationRecord) error
}

// Alerter notifies operators of failures that need a human.
type Alerter interface {
	Alert(ctx context.Context, subject, message string) error
}

// ServiceDeps wires a Service. Audit and Alerter are optional.
type ServiceDeps struct {
	Limiter     Limiter
	Challenges  Challenges
	Sessions    Sessions
	Guild       Guild
	Messenger   Messenger
	Audit       AuditLog
	Alerter     Alerter
	PrivilegeID string
	CodeTTL     time.Duration
	AuditTTL    time.Duration

	// Now stamps audit records. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

type service struct {
	limiter     Limiter
	challenges  Challenges
	sessions    Sessions
	guild       Guild
	messenger   Messenger
	audit       AuditLog
	alerter     Alerter
	privilegeID string
	codeTTL     time.Duration
	auditTTL    time.Duration
	now         func() time.Time
	log         *slog.Logger
}

func NewService(d ServiceDeps) Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.CodeTTL <= 0 {
		d.CodeTTL = 3 * time.Minute
	}
	return &service{
		limiter:     d.Limiter,
		challenges:  d.Challenges,
		sessions:    d.Sessions,
		guild:       d.Guild,
		messenger:   d.Messenger,
		audit:       d.Audit,
		alerter:     d.Alerter,
		privilegeID: d.PrivilegeID,
		codeTTL:     d.CodeTTL,
		auditTTL:    d.AuditTTL,
		now:         d.Now,
		log:         d.Logger,
	}
}

func (s *service) RequestVerification(ctx context.Context, req RequestVerificationRequest) error {
	if !validate.Identity(req.Identity) {
		return domain.ErrInvalidIdentity
	}
	if !s.limiter.Allow(req.Identity) {
		return domain.ErrRateLimited
	}
	if req.ChallengeToken == "" || req.ChallengeAnswer == "" {
		return domain.ErrChallengeRequired
	}
	if !s.challenges.ValidateChallenge(ctx, req.ChallengeToken, req.ChallengeAnswer) {
		return domain.ErrChallengeInvalid
	}
	if req.LivenessToken == "" || req.Fingerprint == "" {
		return domain.ErrLivenessRequired
	}
	if !s.challenges.ValidateLiveness(ctx, req.LivenessToken, req.Fingerprint) {
		return domain.ErrLivenessInvalid
	}

	code, err := s.sessions.Start(req.Identity)
	if err != nil {
		return fmt.Errorf("start verification: %w", err)
	}

	account, err := s.guild.FetchAccount(ctx, req.Identity)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return err
		}
		return fmt.Errorf("%w: fetch account: %w", domain.ErrUnavailable, err)
	}

	if err := s.messenger.SendDirectMessage(ctx, account.ID, codeMessage(code, s.codeTTL)); err != nil {
		s.log.WarnContext(ctx, "code delivery failed", "identity", req.Identity, "err", err)
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	s.log.InfoContext(ctx, "verification code sent", "identity", req.Identity)
	return nil
}

func (s *service) ConfirmVerification(ctx context.Context, req ConfirmVerificationRequest) (*ConfirmResult, error) {
	if req.Identity == "" || req.Code == "" {
		return nil, domain.ErrInvalidInput
	}
	if !validate.Identity(req.Identity) {
		return nil, domain.ErrInvalidIdentity
	}
	code := strings.ToUpper(req.Code)
	if !validate.Code(code) {
		return nil, fmt.Errorf("malformed code: %w", domain.ErrInvalidInput)
	}
	if !s.limiter.Allow(req.Identity) {
		return nil, domain.ErrRateLimited
	}
	if err := s.sessions.Confirm(req.Identity, code); err != nil {
		return nil, err
	}

	// The code is consumed from here on. Any failure below is terminal for
	// this code and is surfaced as ErrGrantFailed.
	account, err := s.guild.FetchAccount(ctx, req.Identity)
	if err != nil {
		return nil, s.grantFailed(ctx, req.Identity, fmt.Errorf("fetch account: %w", err))
	}
	if s.guild.HasPrivilege(account, s.privilegeID) {
		s.record(ctx, req.Identity, domain.OutcomeAlreadyHeld, "")
		s.log.InfoContext(ctx, "verification confirmed, role already held", "identity", req.Identity)
		return &ConfirmResult{AlreadyHeld: true}, nil
	}
	if err := s.guild.GrantPrivilege(ctx, account, s.privilegeID); err != nil {
		return nil, s.grantFailed(ctx, req.Identity, fmt.Errorf("grant role: %w", err))
	}
	s.record(ctx, req.Identity, domain.OutcomeGranted, "")
	s.log.InfoContext(ctx, "verification confirmed, role granted", "identity", req.Identity)
	return &ConfirmResult{}, nil
}

func (s *service) grantFailed(ctx context.Context, identity string, cause error) error {
	s.log.ErrorContext(ctx, "role grant failed after code was consumed", "identity", identity, "err", cause)
	s.record(ctx, identity, domain.OutcomeGrantFailed, cause.Error())
	if s.alerter != nil {
		msg := fmt.Sprintf("Account %s confirmed its code but role %s could not be granted: %v", identity, s.privilegeID, cause)
		if err := s.alerter.Alert(ctx, "Verification role grant failed", msg); err != nil {
			s.log.WarnContext(ctx, "failed to publish grant failure alert", "identity", identity, "err", err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrGrantFailed, cause)
}

// record writes an audit entry. Failures are logged and never surfaced.
func (s *service) record(ctx context.Context, identity, outcome, detail string) {
	if s.audit == nil {
		return
	}
	now := s.now().UTC()
	rec := &domain.VerificationRecord{
		RecordID:    id.New(),
		Identity:    identity,
		PrivilegeID: s.privilegeID,
		Outcome:     outcome,
		Detail:      detail,
		CreatedAt:   now,
	}
	if s.auditTTL > 0 {
		rec.ExpiresAt = now.Add(s.auditTTL).Unix()
	}
	if err := s.audit.Put(ctx, rec); err != nil {
		s.log.WarnContext(ctx, "failed to write verification audit record", "identity", identity, "err", err)
	}
}

func codeMessage(code string, ttl time.Duration) string {
	return fmt.Sprintf("🔐 **Verification code**\n\nYour verification code is: **%s**\n\n"+
		"This code expires in %d minutes.\n\nEnter it on the verification page to finish.",
		code, int(ttl.Minutes()))
}
