package ai

import "context"

// Generator sends one system instruction and one user turn to a
// text-generation backend and returns the raw text it produced.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Configurable is implemented by generators that need a credential.
type Configurable interface {
	Configured() bool
}

// IsConfigured reports whether g can be called at all.
func IsConfigured(g Generator) bool {
	if g == nil {
		return false
	}
	if c, ok := g.(Configurable); ok {
		return c.Configured()
	}
	return true
}
