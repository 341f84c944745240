package wallet

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ScaleBalance converts a raw token amount to display units.
// Without decimals the raw amount is returned as is.
func ScaleBalance(raw uint64, decimals *int) float64 {
	if decimals == nil {
		return float64(raw)
	}
	amount := decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(*decimals))
	return amount.InexactFloat64()
}
