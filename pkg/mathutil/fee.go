package mathutil

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FeeAmountForSize calculates the fee amount in satoshis that a transaction
// of the given virtual size pays at the given rate expressed in satoshis per
// virtual byte. The amount is rounded up so that the paid rate never falls
// below the target one
func FeeAmountForSize(vsize uint64, satsPerVByte decimal.Decimal) uint64 {
	sizeDecimal := decimal.NewFromBigInt(new(big.Int).SetUint64(vsize), 0)
	feeDecimal := MulDecimal(sizeDecimal, satsPerVByte).Ceil()
	return feeDecimal.BigInt().Uint64()
}

// CoinsFromSats converts an amount in satoshis to its representation in whole
// coin units with precision 8
func CoinsFromSats(sats uint64) decimal.Decimal {
	satsDecimal := decimal.NewFromBigInt(new(big.Int).SetUint64(sats), 0)
	return DivDecimal(satsDecimal, BigOneDecimal)
}

// SatsFromCoins converts an amount in whole coin units to satoshis, dropping
// any digit beyond the 8th decimal place
func SatsFromCoins(coins decimal.Decimal) uint64 {
	return MulDecimal(coins, BigOneDecimal).Truncate(0).BigInt().Uint64()
}
