package provider

import "fmt"

// RateLimitError indicates the backend rejected the request for quota or
// throughput reasons. The condition is transient.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("model provider rate limited the request, wait a moment and retry: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// AuthenticationError indicates the backend rejected the configured
// credential. Retrying without operator intervention cannot succeed.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("model provider rejected the credential, check the configured API key: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
