package testutil

// FixedTokenGenerator generates the same session token every time.
//
// This enables deterministic test execution: the same scenario with the
// same FixedTokenGenerator produces byte-identical logs.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent
// use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a new fixed token generator.
//
// If token is empty, Generate() returns "test-session-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-session-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed session token.
//
// Implements session.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
