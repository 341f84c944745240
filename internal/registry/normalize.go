package registry

import (
	"encoding/json"
	"fmt"

	"solana-wallet-tokens/internal/domain"
)

// Legacy field names still served by some registry versions.
const (
	legacyFieldAddress = "address"
	legacyFieldLogoURI = "logoURI"
)

// Normalize maps a raw registry object to canonical form.
// address becomes id and logoURI becomes icon unless the canonical key is already present.
// The legacy keys are kept so the entry still round-trips every field it arrived with.
func Normalize(raw json.RawMessage) (*domain.TokenListEntry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode registry entry: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode registry entry: not an object")
	}

	aliasField(fields, legacyFieldAddress, domain.FieldID)
	aliasField(fields, legacyFieldLogoURI, domain.FieldIcon)

	canonical, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	var entry domain.TokenListEntry
	if err := json.Unmarshal(canonical, &entry); err != nil {
		return nil, fmt.Errorf("decode registry entry: %w", err)
	}
	return &entry, nil
}

func aliasField(fields map[string]json.RawMessage, from, to string) {
	if _, ok := fields[to]; ok {
		return
	}
	if v, ok := fields[from]; ok {
		fields[to] = v
	}
}
