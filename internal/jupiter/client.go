// Package jupiter relays swap preparation to the Jupiter aggregator API.
// The service never signs: the returned transaction is handed back to the caller.
package jupiter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"solana-wallet-tokens/internal/adapter"
	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/observability"
	"solana-wallet-tokens/internal/solana"
)

const (
	// DefaultOutputMint is USDT, used when a swap request names no output mint.
	DefaultOutputMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"

	// DefaultSlippageBps is 0.5%.
	DefaultSlippageBps = 50

	// MaxSlippageBps is 100%.
	MaxSlippageBps = 10000
)

// ErrInvalidRequest is returned for swap requests that fail validation before any I/O.
var ErrInvalidRequest = errors.New("invalid swap request")

// ErrMissingTransaction is returned when the swap response carries no transaction.
var ErrMissingTransaction = errors.New("swap transaction missing in Jupiter response")

// SwapRequest is the body of POST /wallet/swap-transaction.
type SwapRequest struct {
	UserPublicKey string `json:"user_public_key"`
	InputMint     string `json:"input_mint"`
	OutputMint    string `json:"output_mint,omitempty"`
	Amount        uint64 `json:"amount"`
	SlippageBps   *int   `json:"slippage_bps,omitempty"`
}

// SwapTransaction is the prepared, unsigned transaction.
type SwapTransaction struct {
	SwapTransaction string `json:"swapTransaction"`
}

type swapPayload struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

// Client talks to the quote and swap endpoints under one base URL.
type Client struct {
	http    adapter.HTTPClient
	baseURL string
	logger  *zap.Logger
}

// NewClient creates a Jupiter client. baseURL is e.g. https://quote-api.jup.ag/v6.
func NewClient(httpClient adapter.HTTPClient, baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Normalize fills defaults and validates the request in place.
func (r *SwapRequest) Normalize() error {
	if r.OutputMint == "" {
		r.OutputMint = DefaultOutputMint
	}
	if r.SlippageBps == nil {
		bps := DefaultSlippageBps
		r.SlippageBps = &bps
	}

	if err := solana.ValidateAddress(r.UserPublicKey); err != nil {
		return fmt.Errorf("%w: user_public_key: %w", domain.ErrInvalidAddress, err)
	}
	if err := solana.ValidateAddress(r.InputMint); err != nil {
		return fmt.Errorf("%w: input_mint: %w", domain.ErrInvalidAddress, err)
	}
	if err := solana.ValidateAddress(r.OutputMint); err != nil {
		return fmt.Errorf("%w: output_mint: %w", domain.ErrInvalidAddress, err)
	}
	if r.Amount == 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if *r.SlippageBps < 0 || *r.SlippageBps > MaxSlippageBps {
		return fmt.Errorf("%w: slippage_bps must be within 0..%d", ErrInvalidRequest, MaxSlippageBps)
	}
	return nil
}

// PrepareSwap fetches a quote and builds the swap transaction for it.
// Upstream failures wrap domain.ErrUpstreamFetch.
func (c *Client) PrepareSwap(ctx context.Context, req SwapRequest) (*SwapTransaction, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	quote, err := c.quote(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: get quote: %w", domain.ErrUpstreamFetch, err)
	}

	start := time.Now()
	body, err := c.http.PostJSON(ctx, c.baseURL+"/swap", swapPayload{
		QuoteResponse:    quote,
		UserPublicKey:    req.UserPublicKey,
		WrapAndUnwrapSol: true,
	})
	observability.RecordUpstreamLatency("jupiter_swap", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: get swap transaction: %w", domain.ErrUpstreamFetch, err)
	}

	var tx SwapTransaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return nil, fmt.Errorf("%w: decode swap response: %w", domain.ErrUpstreamFetch, err)
	}
	if tx.SwapTransaction == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamFetch, ErrMissingTransaction)
	}

	c.logger.Debug("prepared swap transaction",
		zap.String("user", req.UserPublicKey),
		zap.String("input_mint", req.InputMint),
		zap.String("output_mint", req.OutputMint),
		zap.Uint64("amount", req.Amount))

	return &tx, nil
}

// quote returns the raw quote body so it can be relayed unchanged.
func (c *Client) quote(ctx context.Context, req SwapRequest) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("inputMint", req.InputMint)
	params.Set("outputMint", req.OutputMint)
	params.Set("amount", strconv.FormatUint(req.Amount, 10))
	params.Set("slippageBps", strconv.Itoa(*req.SlippageBps))

	start := time.Now()
	body, err := c.http.Get(ctx, c.baseURL+"/quote?"+params.Encode())
	observability.RecordUpstreamLatency("jupiter_quote", time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("quote response is not valid JSON")
	}
	return json.RawMessage(body), nil
}
