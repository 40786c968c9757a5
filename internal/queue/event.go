// Package queue defines the audit event payloads exchanged over the
// message broker, the publisher used by the auth service and the
// background consumer that writes events to the audit log.
package queue

// AuditQueueName is the durable queue auth audit events flow through.
const AuditQueueName = "auth.audit"

// Event types published by the auth service.
const (
	EventUserRegistered     = "user.registered"
	EventUserLoggedIn       = "user.logged_in"
	EventTokenRefreshed     = "token.refreshed"
	EventTokenRevoked       = "token.revoked"
	EventTokenReuseDetected = "token.reuse_detected"
)

// AuthEvent is published after a successful auth operation (or a
// detected token reuse). It contains enough information for downstream
// consumers to log or alert without querying the primary database.
// Raw credentials and token values are never part of the payload.
type AuthEvent struct {
	Type   string `json:"type"`
	UserID uint64 `json:"user_id"`
	Email  string `json:"email,omitempty"`
	IP     string `json:"ip,omitempty"`
	At     string `json:"at"`
}
