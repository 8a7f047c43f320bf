package session

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/guild-verify/internal/domain"
	"github.com/guild-verify/internal/infrastructure/memory"
	pkgtoken "github.com/guild-verify/internal/pkg/token"
)

const (
	// DefaultTTL is how long an issued code can be confirmed.
	DefaultTTL = 3 * time.Minute
	// CodeLength is the number of characters in a code.
	CodeLength = 5
)

// Manager tracks at most one live code per identity.
//
// Per identity: no code, then issued on Start, then gone once confirmed or
// found expired. Start while a code is live replaces it. A wrong code leaves
// the issued code in place so the user can retry until it expires.
type Manager struct {
	codes *memory.TokenStore[string]
	ttl   time.Duration
}

// NewManager returns a Manager. A zero ttl uses DefaultTTL; now may be nil.
func NewManager(ttl time.Duration, now func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{codes: memory.NewTokenStore[string](now), ttl: ttl}
}

// Start issues a fresh code for identity, replacing any previous one.
func (m *Manager) Start(identity string) (string, error) {
	code, err := pkgtoken.NewCode(CodeLength)
	if err != nil {
		return "", err
	}
	m.codes.Put(identity, code, m.ttl)
	return code, nil
}

// Confirm checks code against the live code for identity, case-insensitively.
// It returns nil and consumes the code on a match, domain.ErrCodeMismatch
// (code kept) on a wrong value, domain.ErrCodeExpired (code dropped) past the
// TTL and domain.ErrCodeNotFound when nothing was issued.
func (m *Manager) Confirm(identity, code string) error {
	submitted := strings.ToUpper(code)
	_, res := m.codes.ConsumeIf(identity, func(stored string) bool {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
	})
	switch res {
	case memory.Consumed:
		return nil
	case memory.Expired:
		return domain.ErrCodeExpired
	case memory.Rejected:
		return domain.ErrCodeMismatch
	default:
		return domain.ErrCodeNotFound
	}
}

// Pending reports whether identity has a live code.
func (m *Manager) Pending(identity string) bool {
	return m.codes.Peek(identity)
}

// Run drops expired codes every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	m.codes.Run(ctx, interval)
}
