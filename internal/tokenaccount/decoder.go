// Package tokenaccount decodes SPL token account data.
package tokenaccount

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-wallet-tokens/internal/domain"
)

// Token account layout: mint(32) | owner(32) | amount(8) | ...
const (
	MintOffset        = 0
	OwnerOffset       = 32
	AmountOffset      = 64
	MinAccountDataLen = 72
)

// Decode extracts the mint and raw balance from token account data.
// owner is the program owner reported by the RPC node, not the wallet stored at OwnerOffset.
// Data shorter than MinAccountDataLen yields domain.ErrMalformedAccountData and no account.
func Decode(data []byte, pubkey, owner string, lamports uint64) (*domain.TokenAccount, error) {
	if len(data) < MinAccountDataLen {
		return nil, fmt.Errorf("%w: account %s: %d bytes, need %d",
			domain.ErrMalformedAccountData, pubkey, len(data), MinAccountDataLen)
	}

	return &domain.TokenAccount{
		Pubkey:     pubkey,
		Mint:       base58.Encode(data[MintOffset:OwnerOffset]),
		Owner:      owner,
		RawBalance: binary.LittleEndian.Uint64(data[AmountOffset:MinAccountDataLen]),
		Lamports:   lamports,
	}, nil
}

// DecodeBase64 decodes a base64 payload as returned by the RPC node, then the account.
func DecodeBase64(data string, pubkey, owner string, lamports uint64) (*domain.TokenAccount, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: account %s: decode base64: %v", domain.ErrMalformedAccountData, pubkey, err)
	}
	return Decode(decoded, pubkey, owner, lamports)
}
