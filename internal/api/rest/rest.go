// Package rest serves the wallet, token and swap endpoints over gin.
package rest

import (
	"github.com/gin-gonic/gin"

	"solana-wallet-tokens/internal/observability"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(observability.Handler()))

	router.GET("/token/:mint", handler.GetToken)

	wallet := router.Group("/wallet")
	{
		wallet.GET("/wallet-tokens/:public_key", handler.GetWalletTokens)
		wallet.POST("/swap-transaction", handler.PrepareSwapTransaction)
	}
}
