package rates

import "errors"

// FetchErrorMessage is the user-facing text carried by every RateFetchError.
const FetchErrorMessage = "Unable to fetch exchange rates. Please check your connection."

// ErrRateFetch matches any RateFetchError via errors.Is.
var ErrRateFetch = errors.New("rate fetch failed")

// RateFetchError reports that neither rate endpoint produced a usable table.
// Error returns the user-facing message; Err keeps the last cause for logs.
type RateFetchError struct {
	Message string
	Err     error
}

func (e *RateFetchError) Error() string { return e.Message }

func (e *RateFetchError) Unwrap() []error {
	return []error{ErrRateFetch, e.Err}
}

func newFetchError(cause error) *RateFetchError {
	return &RateFetchError{Message: FetchErrorMessage, Err: cause}
}
