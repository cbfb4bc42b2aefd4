// Package environment abstracts where credentials and other settings are
// read from, so tests can inject values without touching the process
// environment.
package environment

import "context"

// Provider resolves named environment values.
type Provider interface {
	// Get looks up name and reports whether it is set at all; a set but
	// empty value returns ("", true).
	Get(ctx context.Context, name string) (string, bool)
}
