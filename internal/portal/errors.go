package portal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials means the identity provider rejected the
	// student id / password pair. Never retried.
	ErrInvalidCredentials = errors.New("portal: student id or password rejected")

	// ErrLoginTicket means the CAS login page did not contain the one-time
	// "lt" field, either because the page shape changed or the page failed
	// to load.
	ErrLoginTicket = errors.New("portal: login ticket missing from cas login page")

	// ErrSessionExpired means the jar no longer holds the ticket-granting
	// cookie and the client has no credentials to re-login with. The caller
	// must authenticate again.
	ErrSessionExpired = errors.New("portal: session expired and no credentials bound")

	// ErrNoCredentials is returned by Login on a cookie-only client.
	ErrNoCredentials = errors.New("portal: no credentials bound")
)

// EncryptError reports a failed or malformed password encryption exchange.
type EncryptError struct {
	Err error
}

func (e *EncryptError) Error() string {
	return fmt.Sprintf("portal: password encryption failed: %v", e.Err)
}

func (e *EncryptError) Unwrap() error { return e.Err }

// ServiceLoginError reports that the records system refused the bridged
// login, carrying the observed status code.
type ServiceLoginError struct {
	StatusCode int
}

func (e *ServiceLoginError) Error() string {
	return fmt.Sprintf("portal: jwxt login handoff failed with status %d", e.StatusCode)
}

// StatusError is a transient transport failure: the upstream answered with a
// non-success status. Bounded retries apply before it is surfaced.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("portal: unexpected status %d from %s", e.StatusCode, e.URL)
}

// ParseError reports that an expected structure was absent from a resource
// response. Always fatal, never defaulted.
type ParseError struct {
	Resource string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("portal: parse %s: %s", e.Resource, e.Reason)
}

// IsAuthError reports whether err belongs to the authentication family, as
// opposed to transient transport or parse failures. Callers use this to
// decide between prompting for credentials and simply retrying.
func IsAuthError(err error) bool {
	var (
		encErr *EncryptError
		svcErr *ServiceLoginError
	)
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrLoginTicket) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrNoCredentials) ||
		errors.As(err, &encErr) ||
		errors.As(err, &svcErr)
}
