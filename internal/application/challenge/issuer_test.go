package challenge

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guild-verify/internal/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newIssuer(t *testing.T) (*Issuer, *testClock) {
	t.Helper()
	clk := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	iss := NewIssuer(Options{
		Now:    clk.Now,
		Logger: logging.Discard(),
	})
	return iss, clk
}

// solve computes the answer of a "a + b" question.
func solve(t *testing.T, question string) string {
	t.Helper()
	parts := strings.Split(question, " + ")
	require.Len(t, parts, 2)
	a, err := strconv.Atoi(parts[0])
	require.NoError(t, err)
	b, err := strconv.Atoi(parts[1])
	require.NoError(t, err)
	require.True(t, a >= 1 && a <= 10 && b >= 1 && b <= 10, "operands out of range: %q", question)
	return strconv.Itoa(a + b)
}

func TestIssueChallenge_CorrectAnswerOnce(t *testing.T) {
	iss, _ := newIssuer(t)
	ctx := context.Background()

	ch, err := iss.IssueChallenge(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ch.Token)

	answer := solve(t, ch.Question)
	assert.True(t, iss.ValidateChallenge(ctx, ch.Token, answer))
	assert.False(t, iss.ValidateChallenge(ctx, ch.Token, answer), "token must be single-use")
}

func TestValidateChallenge_WrongAnswerBurnsToken(t *testing.T) {
	iss, _ := newIssuer(t)
	ctx := context.Background()

	ch, err := iss.IssueChallenge(ctx)
	require.NoError(t, err)

	assert.False(t, iss.ValidateChallenge(ctx, ch.Token, "999"))
	assert.False(t, iss.ValidateChallenge(ctx, ch.Token, solve(t, ch.Question)))
}

func TestValidateChallenge_MalformedAnswerBurnsToken(t *testing.T) {
	iss, _ := newIssuer(t)
	ctx := context.Background()

	ch, err := iss.IssueChallenge(ctx)
	require.NoError(t, err)

	assert.False(t, iss.ValidateChallenge(ctx, ch.Token, "seven"))
	assert.False(t, iss.ValidateChallenge(ctx, ch.Token, solve(t, ch.Question)))
}

func TestValidateChallenge_TrimsWhitespace(t *testing.T) {
	iss, _ := newIssuer(t)
	ctx := context.Background()

	ch, err := iss.IssueChallenge(ctx)
	require.NoError(t, err)
	assert.True(t, iss.ValidateChallenge(ctx, ch.Token, " "+solve(t, ch.Question)+" "))
}

func TestValidateChallenge_Expired(t *testing.T) {
	iss, clk := newIssuer(t)
	ctx := context.Background()

	ch, err := iss.IssueChallenge(ctx)
	require.NoError(t, err)

	clk.Advance(DefaultTTL + time.Second)
	assert.False(t, iss.ValidateChallenge(ctx, ch.Token, solve(t, ch.Question)))
}

func TestValidateChallenge_UnknownOrEmptyToken(t *testing.T) {
	iss, _ := newIssuer(t)
	ctx := context.Background()
	assert.False(t, iss.ValidateChallenge(ctx, "", "2"))
	assert.False(t, iss.ValidateChallenge(ctx, "deadbeef", "2"))
}

func TestIssueChallenge_TokensAreDistinct(t *testing.T) {
	iss, _ := newIssuer(t)
	ctx := context.Background()
	a, err := iss.IssueChallenge(ctx)
	require.NoError(t, err)
	b, err := iss.IssueChallenge(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestLiveness_SingleUse(t *testing.T) {
	iss, _ := newIssuer(t)
	ctx := context.Background()

	tok, err := iss.IssueLiveness(ctx, "fp-1")
	require.NoError(t, err)
	assert.True(t, iss.ValidateLiveness(ctx, tok, "fp-1"))
	assert.False(t, iss.ValidateLiveness(ctx, tok, "fp-1"))
}

func TestLiveness_FingerprintIsNotEnforced(t *testing.T) {
	iss, _ := newIssuer(t)
	ctx := context.Background()

	tok, err := iss.IssueLiveness(ctx, "fp-1")
	require.NoError(t, err)
	assert.True(t, iss.ValidateLiveness(ctx, tok, "fp-2"))
}

func TestLiveness_Expired(t *testing.T) {
	iss, clk := newIssuer(t)
	ctx := context.Background()

	tok, err := iss.IssueLiveness(ctx, "fp")
	require.NoError(t, err)
	clk.Advance(DefaultTTL + time.Millisecond)
	assert.False(t, iss.ValidateLiveness(ctx, tok, "fp"))
}

func TestLiveness_AndChallengeTokensDoNotMix(t *testing.T) {
	iss, _ := newIssuer(t)
	ctx := context.Background()

	ch, err := iss.IssueChallenge(ctx)
	require.NoError(t, err)
	assert.False(t, iss.ValidateLiveness(ctx, ch.Token, "fp"))
	assert.True(t, iss.ValidateChallenge(ctx, ch.Token, solve(t, ch.Question)))
}
