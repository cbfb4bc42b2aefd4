package environment

import "strings"

// RequiredEnvError reports environment variables that must be set before any
// request to a model provider is attempted. It is a configuration error, not
// a runtime failure, and is detected eagerly.
type RequiredEnvError struct {
	Missing []string
}

func (e *RequiredEnvError) Error() string {
	return "required environment variables not set: " + strings.Join(e.Missing, ", ")
}
