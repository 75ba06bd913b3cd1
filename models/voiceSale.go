package models

import (
	"context"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

type VoiceSale struct {
	ID                int                  `gorm:"primary_key" json:"id"`
	UserId            int                  `gorm:"index;not null" json:"user_id"`
	VoiceText         string               `gorm:"type:text;not null" json:"voice_text"`
	Items             []VoiceSaleItem      `gorm:"foreignKey:VoiceSaleId" json:"items"`
	ConfirmedItems    []ConfirmedSaleItem  `gorm:"foreignKey:VoiceSaleId" json:"confirmed_items"`
	OverallConfidence decimal.Decimal      `gorm:"type:decimal(5,4);default:0" json:"overall_confidence"`
	NeedsHumanReview  bool                 `gorm:"default:true" json:"needs_human_review"`
	Status            VoiceSaleStatus      `gorm:"size:10;default:pending;index" json:"status"`
	ReviewedBy        *int                 `json:"reviewed_by"`
	ReviewedAt        *time.Time           `json:"reviewed_at"`
	CreatedAt         time.Time            `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type VoiceSaleItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	VoiceSaleId     int             `gorm:"index;not null" json:"voice_sale_id"`
	SpokenName      string          `gorm:"size:100;not null" json:"spoken_name"`
	MatchedItemName string          `gorm:"size:100" json:"matched_item_name"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Unit            string          `gorm:"size:20" json:"unit"`
	Confidence      decimal.Decimal `gorm:"type:decimal(5,4);default:0" json:"confidence"`
	ProductId       *int            `json:"product_id"`
}

// ConfirmedSaleItem is the reviewer's corrected line set. When present
// it overrides Items at confirmation time.
type ConfirmedSaleItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	VoiceSaleId int             `gorm:"index;not null" json:"voice_sale_id"`
	ProductId   int             `gorm:"not null" json:"product_id"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Unit        string          `gorm:"size:20" json:"unit"`
}

func GetVoiceSale(ctx context.Context, id int) (*VoiceSale, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var voiceSale VoiceSale
	db := config.GetDB()
	err := db.WithContext(ctx).Preload("Items").Preload("ConfirmedItems").
		Where("id = ? AND user_id = ?", id, userId).Take(&voiceSale).Error
	if err != nil {
		return nil, utils.NewNotFoundError("voice sale not found")
	}
	return &voiceSale, nil
}

// GetPendingVoiceSales lists the review queue, oldest first.
func GetPendingVoiceSales(ctx context.Context) ([]*VoiceSale, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var voiceSales []*VoiceSale
	db := config.GetDB()
	err := db.WithContext(ctx).Preload("Items").Preload("ConfirmedItems").
		Where("user_id = ? AND status = ?", userId, VoiceSaleStatusPending).
		Order("created_at ASC, id ASC").
		Find(&voiceSales).Error
	if err != nil {
		return nil, err
	}
	return voiceSales, nil
}

type VoiceSaleFilter struct {
	Status *VoiceSaleStatus
	Limit  int
}

func GetVoiceSales(ctx context.Context, filter VoiceSaleFilter) ([]*VoiceSale, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Preload("Items").Preload("ConfirmedItems").
		Where("user_id = ?", userId)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	var voiceSales []*VoiceSale
	err := query.Order("created_at DESC, id DESC").Limit(filter.Limit).Find(&voiceSales).Error
	if err != nil {
		return nil, err
	}
	return voiceSales, nil
}
