package models

import (
	"context"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

type Sale struct {
	ID           int             `gorm:"primary_key" json:"id"`
	UserId       int             `gorm:"index;not null" json:"user_id"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	PaymentMode  PaymentMode     `gorm:"size:10;default:CASH" json:"payment_mode"`
	CustomerName string          `gorm:"size:100" json:"customer_name"`
	Status       SaleStatus      `gorm:"size:15;default:COMPLETED" json:"status"`
	Items        []SaleItem      `gorm:"foreignKey:SaleId" json:"items"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

type SaleItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	SaleId    int             `gorm:"index;not null" json:"sale_id"`
	ProductId int             `gorm:"not null" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Rate      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var sale Sale
	db := config.GetDB()
	err := db.WithContext(ctx).Preload("Items").
		Where("id = ? AND user_id = ?", id, userId).Take(&sale).Error
	if err != nil {
		return nil, utils.NewNotFoundError("sale not found")
	}
	return &sale, nil
}

type SaleFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    *SaleStatus
	Limit     int
}

func GetSales(ctx context.Context, filter SaleFilter) ([]*Sale, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Preload("Items").Where("user_id = ?", userId)
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	var sales []*Sale
	err := query.Order("created_at DESC, id DESC").Limit(filter.Limit).Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}
