package workflow

import (
	"fmt"

	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BatchDeduction records how much a single batch contributed to an allocation.
type BatchDeduction struct {
	BatchId   int             `json:"batch_id"`
	Deducted  decimal.Decimal `json:"deducted"`
	Remaining decimal.Decimal `json:"remaining"`
}

// AllocationResult is the outcome of a FEFO allocation. Shortfall is the
// quantity that could not be covered; the caller decides whether that is
// fatal.
type AllocationResult struct {
	Deductions []BatchDeduction `json:"deductions"`
	Shortfall  decimal.Decimal  `json:"shortfall"`
}

// AllocateStock walks a product's batches in first-expiry-first-out order
// and deducts up to qty, persisting each batch decrement inside the
// caller's transaction. Batches that never expire are consumed last.
// Ties on expiry date fall back to insertion order.
func AllocateStock(tx *gorm.DB, logger *logrus.Logger, productId int, qty decimal.Decimal) (*AllocationResult, error) {
	if qty.IsNegative() {
		return nil, utils.NewValidationError("allocation quantity cannot be negative")
	}

	result := &AllocationResult{Deductions: []BatchDeduction{}}
	if qty.IsZero() {
		return result, nil
	}

	var batches []*models.Batch
	err := tx.Where("product_id = ? AND quantity > 0", productId).
		Order("expiry_date IS NULL, expiry_date ASC, id ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}

	remaining := qty
	for _, batch := range batches {
		if remaining.IsZero() {
			break
		}
		deduct := decimal.Min(batch.Quantity, remaining)
		newQty := batch.Quantity.Sub(deduct)

		if err := tx.Model(&models.Batch{}).Where("id = ?", batch.ID).
			Update("quantity", newQty).Error; err != nil {
			return nil, err
		}

		result.Deductions = append(result.Deductions, BatchDeduction{
			BatchId:   batch.ID,
			Deducted:  deduct,
			Remaining: newQty,
		})
		remaining = remaining.Sub(deduct)
	}

	result.Shortfall = remaining
	if remaining.IsPositive() {
		logger.WithFields(logrus.Fields{
			"field":      "stockAllocator",
			"product_id": productId,
			"requested":  qty.String(),
			"shortfall":  remaining.String(),
		}).Warn("stock allocation could not cover requested quantity")
	}
	return result, nil
}

// QuickAdjustStock applies a signed delta to a single batch without
// spilling into others. Additions target the farthest dated expiry so the
// freshest stock absorbs corrections, with undated batches considered
// last; deductions target the FEFO head.
func QuickAdjustStock(tx *gorm.DB, productId int, delta decimal.Decimal) (*models.Batch, error) {
	order := "expiry_date IS NULL, expiry_date ASC, id ASC"
	if delta.IsPositive() {
		order = "expiry_date IS NULL, expiry_date DESC, id DESC"
	}

	var batch models.Batch
	err := tx.Where("product_id = ? AND quantity > 0", productId).
		Order(order).
		Take(&batch).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("no batch with stock found for product")
		}
		return nil, err
	}

	newQty := batch.Quantity.Add(delta)
	if newQty.IsNegative() {
		return nil, utils.NewInsufficientStockError(
			fmt.Sprintf("adjustment of %s exceeds batch stock %s", delta.String(), batch.Quantity.String()))
	}

	if err := tx.Model(&models.Batch{}).Where("id = ?", batch.ID).
		Update("quantity", newQty).Error; err != nil {
		return nil, err
	}
	batch.Quantity = newQty
	return &batch, nil
}

// AdjustBatchStock applies a signed delta to one batch's offline or online
// pool, failing on a negative result.
func AdjustBatchStock(tx *gorm.DB, batchId int, delta decimal.Decimal, channel models.StockChannel) (*models.Batch, error) {
	var batch models.Batch
	if err := tx.Where("id = ?", batchId).Take(&batch).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("batch not found")
		}
		return nil, err
	}

	column := "quantity"
	current := batch.Quantity
	if channel == models.StockChannelOnline {
		column = "online_stock"
		current = batch.OnlineStock
	}

	newQty := current.Add(delta)
	if newQty.IsNegative() {
		return nil, utils.NewInsufficientStockError(
			fmt.Sprintf("adjustment of %s exceeds %s stock %s", delta.String(), channel, current.String()))
	}

	if err := tx.Model(&models.Batch{}).Where("id = ?", batch.ID).
		Update(column, newQty).Error; err != nil {
		return nil, err
	}
	if channel == models.StockChannelOnline {
		batch.OnlineStock = newQty
	} else {
		batch.Quantity = newQty
	}
	return &batch, nil
}
