package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Canonical field names of a token list entry.
const (
	FieldID       = "id"
	FieldName     = "name"
	FieldSymbol   = "symbol"
	FieldDecimals = "decimals"
	FieldIcon     = "icon"
	FieldTags     = "tags"
	FieldUSDPrice = "usdPrice"
)

// TokenListEntry is one record of the verified token registry in canonical form.
// ID is the mint address and the natural key of the list.
// Decimals and USDPrice are kept raw because the registry does not guarantee their type;
// use DecimalsValue and USDPriceValue to read them.
// Every field the service does not interpret is kept in Extra and written back verbatim.
type TokenListEntry struct {
	ID       string
	Name     *string
	Symbol   *string
	Decimals json.RawMessage
	Icon     *string
	Tags     []string
	USDPrice json.RawMessage
	Extra    map[string]json.RawMessage
}

// UnmarshalJSON decodes an entry in canonical form. Known fields whose value has an
// unexpected type are moved to Extra instead of failing the whole list.
func (e *TokenListEntry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*e = TokenListEntry{}
	for key, raw := range fields {
		ok := true
		switch key {
		case FieldID:
			ok = json.Unmarshal(raw, &e.ID) == nil
		case FieldName:
			e.Name, ok = optionalString(raw)
		case FieldSymbol:
			e.Symbol, ok = optionalString(raw)
		case FieldIcon:
			e.Icon, ok = optionalString(raw)
		case FieldTags:
			var tags []string
			ok = json.Unmarshal(raw, &tags) == nil
			if ok {
				e.Tags = tags
			}
		case FieldDecimals:
			e.Decimals = cloneRaw(raw)
		case FieldUSDPrice:
			e.USDPrice = cloneRaw(raw)
		default:
			ok = false
		}
		if !ok {
			if e.Extra == nil {
				e.Extra = make(map[string]json.RawMessage)
			}
			e.Extra[key] = cloneRaw(raw)
		}
	}
	return nil
}

// MarshalJSON encodes the entry as a single flat object, extras included.
func (e TokenListEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Extra)+7)
	for k, v := range e.Extra {
		out[k] = v
	}
	out[FieldID] = e.ID
	if e.Name != nil {
		out[FieldName] = *e.Name
	}
	if e.Symbol != nil {
		out[FieldSymbol] = *e.Symbol
	}
	if e.Icon != nil {
		out[FieldIcon] = *e.Icon
	}
	if e.Tags != nil {
		out[FieldTags] = e.Tags
	}
	if len(e.Decimals) > 0 {
		out[FieldDecimals] = e.Decimals
	}
	if len(e.USDPrice) > 0 {
		out[FieldUSDPrice] = e.USDPrice
	}
	return json.Marshal(out)
}

// DecimalsValue returns the decimal precision when it resolves to an integer in [0, 255].
// Integral JSON numbers and numeric strings are accepted; anything else reports false.
func (e *TokenListEntry) DecimalsValue() (int, bool) {
	f, ok := rawNumber(e.Decimals)
	if !ok || f != math.Trunc(f) || f < 0 || f > math.MaxUint8 {
		return 0, false
	}
	return int(f), true
}

// USDPriceValue returns the USD price when present and numeric.
func (e *TokenListEntry) USDPriceValue() *float64 {
	f, ok := rawNumber(e.USDPrice)
	if !ok {
		return nil
	}
	return &f
}

func optionalString(raw json.RawMessage) (*string, bool) {
	if isNull(raw) {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

func rawNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
