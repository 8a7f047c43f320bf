package challenge

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/guild-verify/internal/domain"
	"github.com/guild-verify/internal/infrastructure/memory"
	pkgtoken "github.com/guild-verify/internal/pkg/token"
)

// DefaultTTL is how long challenge and liveness tokens stay redeemable.
const DefaultTTL = 5 * time.Minute

// Operands of the arithmetic challenge are drawn from [operandMin, operandMax].
const (
	operandMin = 1
	operandMax = 10
)

// Options configure an Issuer. Zero values fall back to defaults.
type Options struct {
	TTL    time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

type liveness struct {
	fingerprint string
}

// Issuer issues and redeems the anti-automation tokens a client must present
// before a code is sent. Every validation consumes the token, whatever the
// outcome.
type Issuer struct {
	answers  *memory.TokenStore[int]
	liveness *memory.TokenStore[liveness]
	ttl      time.Duration
	log      *slog.Logger
}

func NewIssuer(opts Options) *Issuer {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Issuer{
		answers:  memory.NewTokenStore[int](opts.Now),
		liveness: memory.NewTokenStore[liveness](opts.Now),
		ttl:      opts.TTL,
		log:      opts.Logger,
	}
}

// Run drops unredeemed expired tokens every interval until ctx is done.
func (s *Issuer) Run(ctx context.Context, interval time.Duration) {
	go s.liveness.Run(ctx, interval)
	s.answers.Run(ctx, interval)
}

func (s *Issuer) IssueChallenge(ctx context.Context) (*domain.Challenge, error) {
	a, err := pkgtoken.IntBetween(operandMin, operandMax)
	if err != nil {
		return nil, err
	}
	b, err := pkgtoken.IntBetween(operandMin, operandMax)
	if err != nil {
		return nil, err
	}
	id, err := pkgtoken.NewID()
	if err != nil {
		return nil, err
	}
	s.answers.Put(id, a+b, s.ttl)
	return &domain.Challenge{Token: id, Question: fmt.Sprintf("%d + %d", a, b)}, nil
}

// ValidateChallenge redeems token and compares answer, a base-10 integer, to
// the stored sum. Malformed answers fail but still burn the token.
func (s *Issuer) ValidateChallenge(ctx context.Context, token, answer string) bool {
	if token == "" {
		return false
	}
	want, ok := s.answers.Take(token)
	if !ok {
		s.log.DebugContext(ctx, "challenge token missing or expired")
		return false
	}
	got, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || got != want {
		s.log.DebugContext(ctx, "challenge answer incorrect")
		return false
	}
	return true
}

func (s *Issuer) IssueLiveness(ctx context.Context, fingerprint string) (string, error) {
	id, err := pkgtoken.NewID()
	if err != nil {
		return "", err
	}
	s.liveness.Put(id, liveness{fingerprint: fingerprint}, s.ttl)
	return id, nil
}

// ValidateLiveness redeems token. Only issuance and expiry are checked; a
// fingerprint that differs from the one seen at issuance is logged, not rejected.
func (s *Issuer) ValidateLiveness(ctx context.Context, token, fingerprint string) bool {
	if token == "" {
		return false
	}
	l, ok := s.liveness.Take(token)
	if !ok {
		s.log.DebugContext(ctx, "liveness token missing or expired")
		return false
	}
	if l.fingerprint != fingerprint {
		s.log.InfoContext(ctx, "liveness fingerprint changed since issuance")
	}
	return true
}
