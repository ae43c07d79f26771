// File: internal/common/context_keys.go
package common

const (
	// UserIDHeader carries the caller identity established by the upstream auth gateway.
	UserIDHeader = "X-User-ID"
	// UserIDKey is the context key for storing the authenticated user's ID
	UserIDKey = "userID"
)
