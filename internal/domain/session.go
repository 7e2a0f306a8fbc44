package domain

// Session carries the authenticated caller's identity into every operation.
// It replaces any ambient "current user" lookup so services stay testable.
type Session struct {
	UserID uint
	Email  string
	// Verified mirrors the stored email-verification flag. No operation
	// gates on it server-side; clients decide what verification unlocks.
	Verified bool
}
