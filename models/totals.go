package models

import "github.com/shopspring/decimal"

// ReconcileTotals returns the sub total (sum of item amounts, zero when there
// are none) and the grand total (sub total minus discount).
func ReconcileTotals(itemAmounts []decimal.Decimal, discount decimal.Decimal) (subTotal, grandTotal decimal.Decimal) {
	subTotal = decimal.Zero
	for _, amount := range itemAmounts {
		subTotal = subTotal.Add(amount)
	}
	return subTotal, subTotal.Sub(discount)
}
