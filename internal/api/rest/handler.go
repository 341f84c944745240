package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/jupiter"
	"solana-wallet-tokens/internal/solana"
)

// WalletService enriches a wallet's token accounts.
type WalletService interface {
	Enrich(ctx context.Context, owner string) (*domain.WalletTokens, error)
}

// TokenService looks up a verified token by mint.
type TokenService interface {
	Lookup(ctx context.Context, id string) (*domain.TokenListEntry, error)
}

// SwapService prepares unsigned swap transactions.
type SwapService interface {
	PrepareSwap(ctx context.Context, req jupiter.SwapRequest) (*jupiter.SwapTransaction, error)
}

// Handler defines the REST API handlers
type Handler interface {
	// GetWalletTokens lists a wallet's token accounts with registry metadata
	// GET /wallet/wallet-tokens/:public_key
	GetWalletTokens(c *gin.Context)

	// GetToken returns the verified registry entry for a mint
	// GET /token/:mint
	GetToken(c *gin.Context)

	// PrepareSwapTransaction relays a quote and swap build to Jupiter
	// POST /wallet/swap-transaction
	PrepareSwapTransaction(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

type handler struct {
	wallet WalletService
	tokens TokenService
	swaps  SwapService
}

// NewHandler creates the REST handler.
func NewHandler(wallet WalletService, tokens TokenService, swaps SwapService) Handler {
	return &handler{
		wallet: wallet,
		tokens: tokens,
		swaps:  swaps,
	}
}

// GetWalletTokens enriches every token account owned by :public_key.
func (h *handler) GetWalletTokens(c *gin.Context) {
	result, err := h.wallet.Enrich(c.Request.Context(), c.Param("public_key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetToken returns the registry entry verbatim, unknown fields included.
func (h *handler) GetToken(c *gin.Context) {
	mint := c.Param("mint")
	if err := solana.ValidateAddress(mint); err != nil {
		respondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidAddress, err))
		return
	}

	entry, err := h.tokens.Lookup(c.Request.Context(), mint)
	if err != nil {
		respondError(c, err)
		return
	}
	if entry == nil {
		respondError(c, fmt.Errorf("%w: %s", domain.ErrTokenNotFound, mint))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// PrepareSwapTransaction returns an unsigned swap transaction for the caller to sign.
func (h *handler) PrepareSwapTransaction(c *gin.Context) {
	var req jupiter.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	tx, err := h.swaps.PrepareSwap(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "solana-wallet-tokens",
	})
}
