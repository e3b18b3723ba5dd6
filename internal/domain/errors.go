package domain

import (
	"errors"
	"fmt"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a transport failure against the ledger or an HTTP endpoint.
// Reads are idempotent, so NewNetworkError marks them retriable; nothing in this
// module retries on its own.
type NetworkError struct {
	Op        string // Operation that failed (e.g., "fetch", "profiles", "ownerOf")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// ConfigError represents a configuration error (never retriable).
// The client constructor returns it for address pairing, address syntax
// and unsupported chain ids.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InvariantError is a precondition that failed before any network I/O.
type InvariantError struct {
	Field string
	Msg   string
}

func (e *InvariantError) Error() string {
	return "invariant failed: " + e.Msg
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// Invariantf builds an InvariantError for field.
func Invariantf(field, format string, args ...any) *InvariantError {
	return &InvariantError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// APIError is a non-2xx answer from an HTTP service. Message carries the
// response body verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return e.Message
}

var (
	// ErrInvariant matches every *InvariantError.
	ErrInvariant = errors.New("invariant failed")

	// ErrReadOnly is returned by mutating operations on a client without a signer.
	ErrReadOnly = errors.New("ensureNotReadOnly: read-only client cannot call contract methods that require a signer")

	// ErrAddressPairing is returned when only one of media/market addresses is supplied.
	ErrAddressPairing = errors.New("media address and market address must both be set or both be empty")

	// ErrInvalidAddress is returned for a syntactically invalid ledger address.
	ErrInvalidAddress = errors.New("not a valid address")

	// ErrUnsupportedChain is returned when no deployment is known for a chain id.
	ErrUnsupportedChain = errors.New("chain id not officially supported by the Tuli protocol")

	// ErrMediaNotFound is returned when the ledger has no record for a media id.
	ErrMediaNotFound = errors.New("media not found")

	// ErrScaleMismatch is returned when combining Decimals of different scale.
	ErrScaleMismatch = errors.New("decimal scale mismatch")

	// ErrEmptyAddresses is returned for a profile lookup without addresses.
	ErrEmptyAddresses = errors.New("empty addresses array")

	// ErrTooManyAddresses is returned for a profile lookup above MaxProfileAddresses.
	ErrTooManyAddresses = errors.New("addresses array exceeds max length of 100")

	// ErrProfileRetrieval is returned when the profile service answers without a usable list.
	ErrProfileRetrieval = errors.New("error retrieving users")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
