package workflow

import (
	"context"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

// QuickAdjust applies a signed correction to a product's stock against a
// single batch, after checking ownership.
func QuickAdjust(ctx context.Context, productId int, delta decimal.Decimal) (*models.Batch, error) {
	if _, err := models.GetProduct(ctx, productId); err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return nil, utils.NewValidationError("adjustment delta cannot be zero")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	batch, err := QuickAdjustStock(tx, productId, delta)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return batch, nil
}

// AdjustStock applies a signed delta to one batch's offline or online
// pool, after checking the batch belongs to the caller's product.
func AdjustStock(ctx context.Context, batchId int, delta decimal.Decimal, channel models.StockChannel) (*models.Batch, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}
	if channel != models.StockChannelOffline && channel != models.StockChannelOnline {
		return nil, utils.NewValidationError("channel must be offline or online")
	}
	if delta.IsZero() {
		return nil, utils.NewValidationError("adjustment delta cannot be zero")
	}

	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&models.Batch{}).
		Joins("JOIN products ON products.id = batches.product_id").
		Where("batches.id = ? AND products.user_id = ?", batchId, userId).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, utils.NewNotFoundError("batch not found")
	}

	tx := db.WithContext(ctx).Begin()
	batch, err := AdjustBatchStock(tx, batchId, delta, channel)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return batch, nil
}
