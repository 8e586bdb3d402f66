package llm

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY not set in environment")
	ErrNoChoices     = errors.New("no response choices returned")
)

// StatusError is returned when the remote service answers with anything but 200.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d - %s", e.Op, e.StatusCode, e.Body)
}

// IsStatus reports whether err carries a remote status error with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
