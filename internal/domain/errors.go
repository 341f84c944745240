package domain

import "errors"

// Failure kinds surfaced by the metadata cache and the enrichment pipeline.
// Callers classify with errors.Is; a single error may carry more than one kind.
var (
	// ErrInvalidAddress is returned when a wallet or mint address is not a valid public key.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrMalformedAccountData is returned when token account data does not match the SPL layout.
	ErrMalformedAccountData = errors.New("malformed account data")

	// ErrChainQuery is returned when the RPC node cannot list token accounts.
	ErrChainQuery = errors.New("chain query failed")

	// ErrUpstreamFetch is returned when the token registry cannot be fetched.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrCacheWrite is returned when a refreshed token list could not be persisted.
	ErrCacheWrite = errors.New("cache write failed")

	// ErrTokenNotFound is returned when a mint is not in the verified token list.
	ErrTokenNotFound = errors.New("token not found")
)
