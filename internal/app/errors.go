package app

import "errors"

// Error taxonomy surfaced by the services. Constraint violations propagate
// directly; nothing in this layer retries a conflict on the caller's behalf.
var (
	ErrInvalidInput = errors.New("invalid input")

	ErrOrganizationNotFound = errors.New("organization not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrQueryNotFound        = errors.New("query not found")

	ErrInvalidCredential = errors.New("invalid email or password")

	// ErrInvalidState marks an illegal document lifecycle transition, such as
	// marking a document vector-indexed before processing completed.
	ErrInvalidState = errors.New("invalid document state transition")

	// ErrOrganizationMismatch is the integrity violation raised when a write
	// references an organization that does not own the referenced user.
	ErrOrganizationMismatch = errors.New("organization does not match user's organization")
)
