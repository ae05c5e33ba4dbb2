package llm

import "fmt"

// ProviderError is a transient failure of a single provider: transport
// error, timeout, quota, empty or malformed response. It triggers fallback
// to the next provider in the chain and is never surfaced on its own.
type ProviderError struct {
	Provider string
	Op       string // "classify", "picks"
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ClassificationError is surfaced once every configured provider has
// failed. It carries the last underlying cause and the number of attempts.
type ClassificationError struct {
	Attempts int
	Last     error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed after %d provider(s), last error: %v", e.Attempts, e.Last)
}

func (e *ClassificationError) Unwrap() error { return e.Last }
