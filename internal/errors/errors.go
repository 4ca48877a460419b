// Package errors provides domain-specific error types for ndnpoke.
//
// These types carry structured context (operation, prefix, identity,
// retryability) so the CLI can map a failed run to the right exit code
// and print a useful message instead of a bare wrapped string.
package errors

import (
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrTimedOut           = errors.New("no matching interest before timeout")
	ErrRegistrationFailed = errors.New("prefix registration failed")
	ErrFaceClosed         = errors.New("face closed by forwarder")
	ErrNotConnected       = errors.New("not connected")
	ErrNoKey              = errors.New("no signing key loaded")
	ErrAuthFailed         = errors.New("authentication failed")
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // operation: "dial", "read", "write"
	Addr      string // network address or face URI involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "dial"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// SigningError is returned when a Data packet or command Interest could
// not be signed with the requested identity.  It is never retried.
type SigningError struct {
	Identity string // signing info as given by the user
	Err      error
}

func (e *SigningError) Error() string {
	if e.Identity == "" {
		return fmt.Sprintf("signing: %v", e.Err)
	}
	return fmt.Sprintf("signing with %s: %v", e.Identity, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// RegistrationError records why the forwarder refused (or never
// answered) a prefix registration.  It matches [ErrRegistrationFailed]
// under [errors.Is].
type RegistrationError struct {
	Prefix string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s: %s", e.Prefix, e.Reason)
}

func (e *RegistrationError) Is(target error) bool { return target == ErrRegistrationFailed }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// WrapSigning creates a SigningError unless err already is one.
func WrapSigning(identity string, err error) error {
	if err == nil {
		return nil
	}
	var se *SigningError
	if errors.As(err, &se) {
		return err
	}
	return &SigningError{Identity: identity, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// IsSigning reports whether err came from the signing step.
func IsSigning(err error) bool {
	var se *SigningError
	return errors.As(err, &se)
}

// IsConfig reports whether err is a configuration problem.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// A refused dial to a forwarder that is still starting up is
		// worth another attempt.
		if opErr.Op == "dial" {
			return true
		}
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use ndnpoke/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
