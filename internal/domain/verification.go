package domain

import "time"

// Account is a guild member as resolved by the privilege-grant collaborator.
type Account struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	RoleIDs  []string `json:"role_ids"`
}

// HasRole reports whether roleID is among the account's roles.
func (a *Account) HasRole(roleID string) bool {
	for _, r := range a.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}

// Challenge is an arithmetic human-challenge as shown to the client.
type Challenge struct {
	Token    string `json:"token"`
	Question string `json:"question"`
}

// Outcome values recorded for a confirmed verification.
const (
	OutcomeGranted     = "granted"
	OutcomeAlreadyHeld = "already_held"
	OutcomeGrantFailed = "grant_failed"
)

// VerificationRecord is an audit entry written after a code was confirmed.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type VerificationRecord struct {
	RecordID    string    `json:"id" dynamodbav:"record_id"`
	Identity    string    `json:"identity" dynamodbav:"identity"`
	PrivilegeID string    `json:"privilege_id" dynamodbav:"privilege_id"`
	Outcome     string    `json:"outcome" dynamodbav:"outcome"`
	Detail      string    `json:"detail,omitempty" dynamodbav:"detail,omitempty"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt   int64     `json:"expires_at" dynamodbav:"expires_at"`
}
