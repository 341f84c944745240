package solana

import (
	"fmt"

	sol "github.com/gagliardetto/solana-go"
)

// TokenProgramID is the SPL Token program that owns classic fungible token accounts.
var TokenProgramID = sol.TokenProgramID.String()

// ValidateAddress checks that addr is a base58 encoded 32-byte public key.
func ValidateAddress(addr string) error {
	if _, err := sol.PublicKeyFromBase58(addr); err != nil {
		return fmt.Errorf("parse public key %q: %w", addr, err)
	}
	return nil
}
