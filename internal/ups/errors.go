package ups

import "errors"

// Provider errors.
var (
	// ErrNoProvider is returned by FromContext when no provider is installed.
	ErrNoProvider = errors.New("ups: no provider in context")

	// ErrAlreadyMounted is returned by Mount on a mounted provider.
	ErrAlreadyMounted = errors.New("ups: provider already mounted")

	// ErrNotMounted is returned by Unmount on a provider that is not mounted.
	ErrNotMounted = errors.New("ups: provider not mounted")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("ups: provider closed")

	// ErrFeatureDisabled is returned by views whose feature is off.
	ErrFeatureDisabled = errors.New("ups: feature disabled")

	// ErrInvalidConfig wraps configuration problems.
	ErrInvalidConfig = errors.New("ups: invalid config")
)

// InitError is reported when one Mount step fails. Mount carries on with
// the remaining steps.
type InitError struct {
	Step string
	Err  error
}

func (e *InitError) Error() string {
	return "ups: initialize " + e.Step + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
