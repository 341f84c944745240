package tokencache

import "solana-wallet-tokens/internal/domain"

// Index maps mint address to token list entry.
type Index map[string]*domain.TokenListEntry

// NewIndex builds an Index. When ids repeat, the first entry wins, matching Lookup.
func NewIndex(entries []domain.TokenListEntry) Index {
	idx := make(Index, len(entries))
	for i := range entries {
		if _, exists := idx[entries[i].ID]; exists {
			continue
		}
		idx[entries[i].ID] = &entries[i]
	}
	return idx
}

// Get returns the entry for mint, if any.
func (idx Index) Get(mint string) (*domain.TokenListEntry, bool) {
	e, ok := idx[mint]
	return e, ok
}
