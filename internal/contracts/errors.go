package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSymbol is a symbol with no alphanumeric character.
	// Recorded by the pipeline, never returned from a run.
	ErrInvalidSymbol = errors.New("invalid ticker symbol")

	// ErrRateLimited marks a provider failure worth retrying.
	// Adapters wrap it; callers test with IsRateLimited.
	ErrRateLimited = errors.New("rate limited")

	// ErrSymbolNotFound is returned when the provider has no such ticker
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrAuth is returned by token providers that cannot produce a token
	ErrAuth = errors.New("authorization failed")
)

// IsRateLimited reports whether err is a retryable rate-limit failure
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// FetchError is returned after every attempt for a symbol was rate limited
type FetchError struct {
	Symbol   TickerSymbol
	Attempts int
	Err      error // last rate-limit error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s after %d attempts: %v", e.Symbol, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ProviderError is a non-retryable market data failure
type ProviderError struct {
	Symbol TickerSymbol
	Op     string // "fundamentals", "history"
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// PersistenceError is a failed audit, snapshot or prune write. Fatal to the run.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotificationError is a failed summary send
type NotificationError struct {
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.Recipient, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
