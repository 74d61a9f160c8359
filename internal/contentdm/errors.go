package contentdm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNoRecords is returned by Query when the collection reports zero
	// records.
	ErrNoRecords = errors.New("collection has no records")
	// ErrItemNotFound is returned by GetFile when the server answers with
	// its "Requested item not found" body.
	ErrItemNotFound = errors.New("requested item not found")
	// ErrTimeout wraps request timeouts.
	ErrTimeout = errors.New("request timed out")
	// ErrEmptyResponse is returned when a query answer carries no pager.
	ErrEmptyResponse = errors.New("empty response")
)

// StatusError is returned for non-success HTTP statuses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// APIError is an error document returned by the web services API.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("contentdm error %s: %s", e.Code, e.Message)
}

// IsTimeout reports whether err was caused by a deadline or a network
// timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func wrapTimeout(err error) error {
	if IsTimeout(err) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
