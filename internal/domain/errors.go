package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage means the command carried no location argument.
	ErrUsage = errors.New("missing location argument")

	// ErrMalformedResponse means a 2xx body could not be parsed into a
	// WeatherReading. Wrapped errors name the offending field.
	ErrMalformedResponse = errors.New("malformed weather response")

	// ErrUnavailable means the weather service could not be reached at all
	// (DNS, refused connection, timeout).
	ErrUnavailable = errors.New("weather service unavailable")

	// ErrUndecodable marks a transport message that is not a chat message.
	// The message should be committed and skipped, not retried.
	ErrUndecodable = errors.New("undecodable chat message")
)

// RequestFailedError reports a non-2xx response from the weather service.
type RequestFailedError struct {
	StatusCode int
	Body       string
}

func (e *RequestFailedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("weather request failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("weather request failed: status %d: %s", e.StatusCode, e.Body)
}

// StatusCode extracts the HTTP status from a RequestFailedError anywhere in
// err's chain. It returns 0 when err is not a request failure.
func StatusCode(err error) int {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.StatusCode
	}
	return 0
}
