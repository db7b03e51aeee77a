// Package provider contains the generative model clients used to
// rewrite tickets.
package provider

import "context"

// Provider is the abstraction over generative model APIs: one prompt
// in, free text out. No streaming, no multi-turn state.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
