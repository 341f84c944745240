package solana

import "context"

// RPCClient defines the Solana RPC HTTP calls the service depends on.
type RPCClient interface {
	// GetTokenAccountsByOwner lists all accounts owned by programID whose token owner is owner.
	// Account data is returned base64 encoded, in the order reported by the node.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]KeyedAccount, error)
}
