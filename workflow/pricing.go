package workflow

import (
	"github.com/kiranakhata/retail_backend/models"
	"github.com/shopspring/decimal"
)

var (
	costMarkup        = decimal.NewFromFloat(1.2)
	fallbackRateKg    = decimal.NewFromInt(50)
	fallbackRateLtr   = decimal.NewFromInt(60)
	fallbackRateOther = decimal.NewFromInt(20)
	fallbackRateNone  = decimal.NewFromInt(10)
	minimumSaleTotal  = decimal.NewFromInt(10)
)

// ResolveUnitPrice picks a per-unit rate for a sale line when the caller
// has no explicit price. The chain degrades from configured prices through
// batch prices down to flat per-unit guesses, so a voice sale can always
// be valued at confirmation.
func ResolveUnitPrice(product *models.Product, latestBatch *models.Batch, unit string) decimal.Decimal {
	if product != nil {
		if product.SellingPrice.IsPositive() {
			return product.SellingPrice
		}
		if product.CostPrice.IsPositive() {
			return product.CostPrice.Mul(costMarkup)
		}
	}
	if latestBatch != nil {
		if latestBatch.SellingPrice.IsPositive() {
			return latestBatch.SellingPrice
		}
		if latestBatch.Mrp.IsPositive() {
			return latestBatch.Mrp
		}
	}
	if product == nil {
		return fallbackRateNone
	}
	switch unit {
	case "kg":
		return fallbackRateKg
	case "ltr":
		return fallbackRateLtr
	default:
		return fallbackRateOther
	}
}

// FloorSaleTotal keeps a fully-fabricated sale from posting a zero ledger
// row. Any positive computed total passes through unchanged.
func FloorSaleTotal(total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return minimumSaleTotal
	}
	return total
}
