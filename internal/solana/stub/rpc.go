package stub

import (
	"context"
	"sync"

	"solana-wallet-tokens/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu       sync.Mutex
	Accounts map[string][]solana.KeyedAccount // keyed by owner
	Err      error
	calls    int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts: make(map[string][]solana.KeyedAccount),
	}
}

// GetTokenAccountsByOwner returns the accounts registered for owner, or Err when set.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, _ string) ([]solana.KeyedAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.Err != nil {
		return nil, c.Err
	}
	accounts := c.Accounts[owner]
	out := make([]solana.KeyedAccount, len(accounts))
	copy(out, accounts)
	return out, nil
}

// AddAccount registers a token account for owner.
func (c *RPCClient) AddAccount(owner string, account solana.KeyedAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[owner] = append(c.Accounts[owner], account)
}

// Calls returns how many listings were requested.
func (c *RPCClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var _ solana.RPCClient = (*RPCClient)(nil)
