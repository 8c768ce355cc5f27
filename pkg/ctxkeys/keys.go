// Package ctxkeys defines typed context keys to avoid SA1029 lint warnings
// and prevent key collisions across packages.
package ctxkeys

// Key is a typed context key to prevent collisions.
type Key string

// Auth context keys
const (
	KeyUserID   Key = "user_id"
	KeyEmail    Key = "email"
	KeyRole     Key = "role"
	KeyJWTToken Key = "jwt_token"
	KeyAuthType Key = "auth_type"
)

// Request context keys
const (
	KeyRequestID    Key = "request_id"
	KeyClientIP     Key = "client_ip"
	KeyRequestStart Key = "request_start"
)
