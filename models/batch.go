package models

import (
	"context"
	"errors"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Batch struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ProductId    int             `gorm:"index;not null" json:"product_id"`
	BatchNumber  string          `gorm:"size:50" json:"batch_number"`
	ExpiryDate   *time.Time      `gorm:"index" json:"expiry_date"`
	Mrp          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"mrp"`
	PurchaseRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_rate"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	OnlineStock  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"online_stock"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeSave backstops the allocator's checks. A negative stock figure
// reaching the database is a bug, never a valid state.
func (b *Batch) BeforeSave(tx *gorm.DB) error {
	if b.Quantity.IsNegative() {
		return errors.New("batch quantity cannot be negative")
	}
	if b.OnlineStock.IsNegative() {
		return errors.New("batch online stock cannot be negative")
	}
	return nil
}

type NewBatch struct {
	ProductId    int             `json:"product_id" binding:"required"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	Mrp          decimal.Decimal `json:"mrp"`
	PurchaseRate decimal.Decimal `json:"purchase_rate"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// AddBatch records a manual stock-in against an existing product.
func AddBatch(ctx context.Context, input *NewBatch) (*Batch, error) {
	if _, err := GetProduct(ctx, input.ProductId); err != nil {
		return nil, err
	}
	if input.Quantity.IsNegative() {
		return nil, utils.NewValidationError("quantity cannot be negative")
	}

	batch := Batch{
		ProductId:    input.ProductId,
		BatchNumber:  input.BatchNumber,
		ExpiryDate:   input.ExpiryDate,
		Mrp:          input.Mrp,
		PurchaseRate: input.PurchaseRate,
		SellingPrice: input.SellingPrice,
		Quantity:     input.Quantity,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatches lists a product's batches in consumption order.
func GetBatches(ctx context.Context, productId int) ([]*Batch, error) {
	if _, err := GetProduct(ctx, productId); err != nil {
		return nil, err
	}

	var batches []*Batch
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("product_id = ?", productId).
		Order("expiry_date IS NULL, expiry_date ASC, id ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// LatestBatch returns the most recently added batch for a product, or
// nil when none exists.
func LatestBatch(tx *gorm.DB, productId int) (*Batch, error) {
	var batch Batch
	err := tx.Where("product_id = ?", productId).
		Order("created_at DESC, id DESC").
		Take(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

type ExpiringBatch struct {
	Batch
	ProductName string `json:"product_name"`
	Unit        string `json:"unit"`
}

// GetExpiringBatches lists batches with stock on hand that expire
// within the given number of days.
func GetExpiringBatches(ctx context.Context, withinDays int) ([]*ExpiringBatch, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	cutoff := time.Now().AddDate(0, 0, withinDays)

	var batches []*ExpiringBatch
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&Batch{}).
		Select("batches.*", "products.name AS product_name", "products.unit AS unit").
		Joins("JOIN products ON products.id = batches.product_id").
		Where("products.user_id = ?", userId).
		Where("batches.expiry_date IS NOT NULL AND batches.expiry_date <= ?", cutoff).
		Where("batches.quantity > 0").
		Order("batches.expiry_date ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}
