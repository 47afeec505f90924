package auth

import "errors"

// Reason is the outcome of gating a single request
type Reason int

const (
	ReasonOK Reason = iota
	ReasonNoToken
	ReasonMalformedToken
	ReasonExpired
	ReasonBadSignature
	ReasonInsufficientRole
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonNoToken:
		return "no_token"
	case ReasonMalformedToken:
		return "malformed_token"
	case ReasonExpired:
		return "expired"
	case ReasonBadSignature:
		return "bad_signature"
	case ReasonInsufficientRole:
		return "insufficient_role"
	default:
		return "unknown"
	}
}

// Error is an authentication or authorization failure tagged with its Reason.
// Two Errors match under errors.Is when their reasons are equal.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Reason.String() + ": " + e.Err.Error()
	}
	return e.Reason.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Reason == e.Reason
}

var (
	ErrNoToken          = &Error{Reason: ReasonNoToken}
	ErrMalformedToken   = &Error{Reason: ReasonMalformedToken}
	ErrExpiredToken     = &Error{Reason: ReasonExpired}
	ErrBadSignature     = &Error{Reason: ReasonBadSignature}
	ErrInsufficientRole = &Error{Reason: ReasonInsufficientRole}
)

var (
	// ErrSecretNotConfigured is returned by the token service when no signing secret is set
	ErrSecretNotConfigured = errors.New("token signing secret not configured")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	// ErrStoreUnavailable means the credential store could not be queried at all
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// ReasonOf extracts the Reason carried by err. Errors that carry no reason
// report ReasonMalformedToken so callers never treat them as ok.
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonMalformedToken
}

func newError(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}
