package study

import "errors"

var (
	ErrConfiguration = errors.New("configuration error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNetwork       = errors.New("network error")
	ErrResponse      = errors.New("unexpected response")
	ErrNotify        = errors.New("notification failed")
)

// IsConfiguration also matches auth failures: a rejected token is a bad config.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrUnauthorized)
}

// ExitCode maps an error from a run to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUnauthorized):
		return 3
	case errors.Is(err, ErrConfiguration):
		return 2
	case errors.Is(err, ErrNotify):
		return 6
	case errors.Is(err, ErrNetwork):
		return 4
	case errors.Is(err, ErrResponse):
		return 5
	default:
		return 1
	}
}
