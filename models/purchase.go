package models

import (
	"context"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID            int             `gorm:"primary_key" json:"id"`
	UserId        int             `gorm:"index;not null" json:"user_id"`
	SupplierId    *int            `gorm:"index" json:"supplier_id"`
	InvoiceNumber string          `gorm:"size:50" json:"invoice_number"`
	Date          time.Time       `gorm:"index;not null" json:"date"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Cgst          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cgst"`
	Sgst          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sgst"`
	Igst          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"igst"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseId" json:"items"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type PurchaseItem struct {
	ID         int             `gorm:"primary_key" json:"id"`
	PurchaseId int             `gorm:"index;not null" json:"purchase_id"`
	ProductId  int             `gorm:"not null" json:"product_id"`
	BatchId    int             `gorm:"not null" json:"batch_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Rate       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var purchase Purchase
	db := config.GetDB()
	err := db.WithContext(ctx).Preload("Items").
		Where("id = ? AND user_id = ?", id, userId).Take(&purchase).Error
	if err != nil {
		return nil, utils.NewNotFoundError("purchase not found")
	}
	return &purchase, nil
}

type PurchaseFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	SupplierId *int
	Limit      int
}

func GetPurchases(ctx context.Context, filter PurchaseFilter) ([]*Purchase, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Preload("Items").Where("user_id = ?", userId)
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.SupplierId != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierId)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	var purchases []*Purchase
	err := query.Order("date DESC, id DESC").Limit(filter.Limit).Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}
