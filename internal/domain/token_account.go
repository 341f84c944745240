package domain

// TokenAccount is a decoded SPL token account before metadata is applied.
type TokenAccount struct {
	Pubkey     string // token account address
	Mint       string // mint address, bytes 0..32 of the account data
	Owner      string // program owner reported by the RPC node
	RawBalance uint64 // amount in base units, bytes 64..72 little-endian
	Lamports   uint64 // rent-exempt reserve held by the account
}

// EnrichedTokenAccount is a token account merged with registry metadata.
// Display fields stay nil when the mint is not in the token list.
type EnrichedTokenAccount struct {
	Pubkey          string   `json:"pubkey"`
	Mint            string   `json:"mint"`
	Owner           string   `json:"owner"`
	RawBalance      uint64   `json:"raw_balance"`
	Balance         float64  `json:"balance"`
	LamportsForRent uint64   `json:"lamports_for_rent"`
	Decimals        *int     `json:"decimals"`
	Name            *string  `json:"name"`
	Symbol          *string  `json:"symbol"`
	Icon            *string  `json:"icon"`
	Tags            []string `json:"tags"`
	USDPrice        *float64 `json:"usd_price"`
}

// WalletTokens is the enrichment result for one wallet.
type WalletTokens struct {
	Owner         string                 `json:"owner"`
	TokenAccounts []EnrichedTokenAccount `json:"token_accounts"`
	Message       *string                `json:"message"`
}
