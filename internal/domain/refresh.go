package domain

// RefreshStatus is the outcome of a token list refresh.
type RefreshStatus string

const (
	RefreshStatusSuccess       RefreshStatus = "success"
	RefreshStatusUpstreamError RefreshStatus = "upstream_error"
	RefreshStatusStoreError    RefreshStatus = "store_error"
)

// RefreshRecord is one entry of the token list refresh history.
type RefreshRecord struct {
	RefreshedAt int64         `json:"refreshed_at"` // refresh start (ms)
	Entries     int           `json:"entries"`      // number of entries fetched, 0 on upstream failure
	DurationMs  int64         `json:"duration_ms"`
	Status      RefreshStatus `json:"status"`
	Error       *string       `json:"error,omitempty"`
}
