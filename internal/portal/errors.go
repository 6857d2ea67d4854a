// Where: internal/portal/errors.go
// What: Classified error types for portal interactions.
// Why: Let callers branch on failure kind (retry vs. terminal) via errors.As.
package portal

import (
	"fmt"
	"strings"
)

// AuthError indicates the portal rejected the credentials or session,
// or the login exchange did not produce an authenticated session.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// DuplicateVersionError indicates the portal already has a record for
// the submitted version. Never retried.
type DuplicateVersionError struct {
	Version string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("version %s is already published", e.Version)
}

// ValidationError indicates the portal re-rendered the form with field
// errors. Never retried.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "portal rejected the submitted fields"
	}
	return "portal rejected the submitted fields: " + strings.Join(e.Messages, "; ")
}

// TransientError indicates a network failure or a 5xx/429 response.
// Safe to retry with bounded backoff.
type TransientError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: transient failure: portal returned HTTP %d", e.Op, e.Status)
}

func (e *TransientError) Unwrap() error { return e.Err }
