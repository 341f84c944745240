// Package wallet lists a wallet's SPL token accounts and enriches them with registry metadata.
package wallet

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/observability"
	"solana-wallet-tokens/internal/solana"
	"solana-wallet-tokens/internal/tokenaccount"
	"solana-wallet-tokens/internal/tokencache"
)

// Informational messages returned alongside a successful result.
const (
	MessageNoAccounts          = "No token accounts found."
	MessageMetadataUnavailable = "Token metadata unavailable."
)

// TokenIndexer provides the token list indexed by mint.
type TokenIndexer interface {
	Index(ctx context.Context) (tokencache.Index, error)
}

// Enricher runs the wallet enrichment pipeline.
type Enricher struct {
	rpc       solana.RPCClient
	tokens    TokenIndexer
	programID string
	degrade   bool
	logger    *zap.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithDegradeOnMetadataError returns accounts without display fields when the
// token list cannot be loaded, instead of failing the call.
func WithDegradeOnMetadataError(degrade bool) Option {
	return func(e *Enricher) {
		e.degrade = degrade
	}
}

// WithProgramID overrides the token program whose accounts are listed.
func WithProgramID(programID string) Option {
	return func(e *Enricher) {
		e.programID = programID
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// NewEnricher creates an Enricher.
func NewEnricher(rpc solana.RPCClient, tokens TokenIndexer, opts ...Option) *Enricher {
	e := &Enricher{
		rpc:       rpc,
		tokens:    tokens,
		programID: solana.TokenProgramID,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich lists owner's token accounts and merges registry metadata into each.
//
// Failures are terminal for the whole call and keep their kind:
// domain.ErrInvalidAddress before any I/O, domain.ErrChainQuery when listing fails,
// domain.ErrMalformedAccountData when any account does not decode, and an error
// wrapping both domain.ErrChainQuery and domain.ErrUpstreamFetch when the token list
// cannot be loaded (unless degraded output is enabled).
// Accounts are returned in the order the RPC node listed them.
func (e *Enricher) Enrich(ctx context.Context, owner string) (*domain.WalletTokens, error) {
	if err := solana.ValidateAddress(owner); err != nil {
		observability.RecordEnrichment("invalid_address", 0)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidAddress, owner, err)
	}

	keyed, err := e.rpc.GetTokenAccountsByOwner(ctx, owner, e.programID)
	if err != nil {
		observability.RecordEnrichment("chain_query_error", 0)
		return nil, fmt.Errorf("%w: list token accounts of %s: %w", domain.ErrChainQuery, owner, err)
	}

	if len(keyed) == 0 {
		observability.RecordEnrichment("empty", 0)
		return &domain.WalletTokens{
			Owner:         owner,
			TokenAccounts: []domain.EnrichedTokenAccount{},
			Message:       strPtr(MessageNoAccounts),
		}, nil
	}

	accounts := make([]*domain.TokenAccount, 0, len(keyed))
	for _, ka := range keyed {
		acc, err := tokenaccount.DecodeBase64(ka.Account.Data, ka.Pubkey, ka.Account.Owner, ka.Account.Lamports)
		if err != nil {
			e.logger.Error("malformed token account",
				zap.String("owner", owner),
				zap.String("account", ka.Pubkey),
				zap.Error(err))
			observability.RecordEnrichment("malformed_account_data", 0)
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	result := &domain.WalletTokens{
		Owner:         owner,
		TokenAccounts: make([]domain.EnrichedTokenAccount, 0, len(accounts)),
	}

	idx, err := e.tokens.Index(ctx)
	if err != nil {
		if !e.degrade {
			observability.RecordEnrichment("upstream_fetch_error", 0)
			return nil, fmt.Errorf("%w: token metadata: %w", domain.ErrChainQuery, err)
		}
		e.logger.Warn("token metadata unavailable, returning accounts without metadata",
			zap.String("owner", owner),
			zap.Error(err))
		result.Message = strPtr(MessageMetadataUnavailable)
		idx = nil
	}

	for _, acc := range accounts {
		entry, _ := idx.Get(acc.Mint)
		result.TokenAccounts = append(result.TokenAccounts, enrich(acc, entry))
	}

	outcome := "success"
	if result.Message != nil {
		outcome = "degraded"
	}
	observability.RecordEnrichment(outcome, len(result.TokenAccounts))
	return result, nil
}

// enrich merges entry into acc. A nil entry leaves every display field absent.
func enrich(acc *domain.TokenAccount, entry *domain.TokenListEntry) domain.EnrichedTokenAccount {
	out := domain.EnrichedTokenAccount{
		Pubkey:          acc.Pubkey,
		Mint:            acc.Mint,
		Owner:           acc.Owner,
		RawBalance:      acc.RawBalance,
		LamportsForRent: acc.Lamports,
	}

	if entry != nil {
		if d, ok := entry.DecimalsValue(); ok {
			out.Decimals = &d
		}
		out.Name = entry.Name
		out.Symbol = entry.Symbol
		out.Icon = entry.Icon
		out.Tags = entry.Tags
		out.USDPrice = entry.USDPriceValue()
	}

	out.Balance = ScaleBalance(acc.RawBalance, out.Decimals)
	return out
}

func strPtr(s string) *string { return &s }
