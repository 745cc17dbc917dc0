package portal

import "errors"

// Error taxonomy for portal sessions. Handlers map these onto HTTP statuses;
// anything not wrapped here is a programming error.
var (
	// ErrAuthenticationFailed means the portal rejected the supplied
	// credentials. Never retried: repeated bad logins risk account lockout.
	ErrAuthenticationFailed = errors.New("portal rejected credentials")

	// ErrUnavailable covers network faults, timeouts and upstream 5xx.
	// Transient; the client retries a bounded number of times with jitter.
	ErrUnavailable = errors.New("portal unavailable")

	// ErrBadShape means the payload decoded but does not match the schema we
	// expect. Not retried; the same bytes would fail the same way.
	ErrBadShape = errors.New("unexpected portal response shape")
)
