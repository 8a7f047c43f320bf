package domain

import (
	"errors"
	"fmt"
)

// Category sentinels. Every specific error below wraps exactly one of them so
// transports can map a whole family to a status code with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrThrottled   = errors.New("throttled")
	ErrChallenge   = errors.New("challenge failed")
	ErrLiveness    = errors.New("liveness check failed")
	ErrSession     = errors.New("verification code rejected")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("service unavailable")
)

var (
	ErrInvalidInput = fmt.Errorf("%w: invalid input", ErrValidation)
	// ErrInvalidIdentity is the invalid-input case of a malformed account id.
	ErrInvalidIdentity = fmt.Errorf("%w: invalid identity", ErrInvalidInput)

	ErrRateLimited = fmt.Errorf("%w: too many attempts", ErrThrottled)

	ErrChallengeRequired = fmt.Errorf("%w: challenge is required", ErrChallenge)
	ErrChallengeInvalid  = fmt.Errorf("%w: challenge expired or incorrect", ErrChallenge)

	ErrLivenessRequired = fmt.Errorf("%w: browser check is required", ErrLiveness)
	ErrLivenessInvalid  = fmt.Errorf("%w: browser check invalid", ErrLiveness)

	ErrCodeNotFound = fmt.Errorf("%w: no code issued", ErrSession)
	ErrCodeExpired  = fmt.Errorf("%w: code expired", ErrSession)
	ErrCodeMismatch = fmt.Errorf("%w: code incorrect", ErrSession)

	ErrIdentityNotFound = fmt.Errorf("%w: account is not a guild member", ErrNotFound)

	// ErrNotReady is returned while the guild connection is not established.
	ErrNotReady       = fmt.Errorf("%w: guild connection not ready", ErrUnavailable)
	ErrDeliveryFailed = fmt.Errorf("%w: could not deliver code", ErrUnavailable)
	// ErrGrantFailed means the code was consumed but the role was not assigned.
	// The account has to be re-verified or fixed by an operator.
	ErrGrantFailed = fmt.Errorf("%w: could not grant role", ErrUnavailable)
)
