package models

import (
	"context"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

type CapitalTransaction struct {
	ID          int                    `gorm:"primary_key" json:"id"`
	UserId      int                    `gorm:"index;not null" json:"user_id"`
	Type        CapitalTransactionType `gorm:"size:10;not null" json:"type"`
	Category    CapitalCategory        `gorm:"size:20;not null" json:"category"`
	Amount      decimal.Decimal        `gorm:"type:decimal(20,4);not null" json:"amount"`
	Date        time.Time              `gorm:"index;not null" json:"date"`
	Mode        CapitalMode            `gorm:"size:10;default:CASH" json:"mode"`
	Description string                 `gorm:"size:255" json:"description"`
	CreatedAt   time.Time              `gorm:"autoCreateTime" json:"created_at"`
}

type NewCapitalTransaction struct {
	Type        CapitalTransactionType `json:"type" binding:"required"`
	Category    CapitalCategory        `json:"category" binding:"required"`
	Amount      decimal.Decimal        `json:"amount" binding:"required"`
	Date        *time.Time             `json:"date"`
	Mode        CapitalMode            `json:"mode"`
	Description string                 `json:"description"`
}

func AddCapitalTransaction(ctx context.Context, input *NewCapitalTransaction) (*CapitalTransaction, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	if input.Type != CapitalTransactionTypeCredit && input.Type != CapitalTransactionTypeDebit {
		return nil, utils.NewValidationError("type must be CREDIT or DEBIT")
	}
	if !input.Amount.IsPositive() {
		return nil, utils.NewValidationError("amount must be positive")
	}

	record := CapitalTransaction{
		UserId:      userId,
		Type:        input.Type,
		Category:    input.Category,
		Amount:      input.Amount,
		Mode:        input.Mode,
		Description: input.Description,
	}
	if input.Date != nil {
		record.Date = *input.Date
	} else {
		record.Date = time.Now()
	}
	if record.Mode == "" {
		record.Mode = CapitalModeCash
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

type CapitalFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      *CapitalTransactionType
	Category  *CapitalCategory
	Limit     int
}

func GetCapitalTransactions(ctx context.Context, filter CapitalFilter) ([]*CapitalTransaction, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Where("user_id = ?", userId)
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	var records []*CapitalTransaction
	err := query.Order("date DESC, id DESC").Limit(filter.Limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type CapitalSummary struct {
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	Net         decimal.Decimal `json:"net"`
	CashInHand  decimal.Decimal `json:"cash_in_hand"`
	BankBalance decimal.Decimal `json:"bank_balance"`
}

// GetCapitalSummary folds the capital records into credit/debit totals
// and a CASH vs BANK/UPI split of the net position.
func GetCapitalSummary(ctx context.Context) (*CapitalSummary, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var rows []struct {
		Type  CapitalTransactionType
		Mode  CapitalMode
		Total decimal.Decimal
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&CapitalTransaction{}).
		Select("type", "mode", "SUM(amount) AS total").
		Where("user_id = ?", userId).
		Group("type").Group("mode").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := CapitalSummary{}
	for _, row := range rows {
		signed := row.Total
		if row.Type == CapitalTransactionTypeCredit {
			summary.TotalCredit = summary.TotalCredit.Add(row.Total)
		} else {
			summary.TotalDebit = summary.TotalDebit.Add(row.Total)
			signed = signed.Neg()
		}
		if row.Mode == CapitalModeCash {
			summary.CashInHand = summary.CashInHand.Add(signed)
		} else {
			summary.BankBalance = summary.BankBalance.Add(signed)
		}
	}
	summary.Net = summary.TotalCredit.Sub(summary.TotalDebit)
	return &summary, nil
}
