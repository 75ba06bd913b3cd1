package workflow

import (
	"context"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NewCashEntry struct {
	Type        models.TransactionType      `json:"type" binding:"required"`
	Direction   models.TransactionDirection `json:"direction" binding:"required"`
	Amount      decimal.Decimal             `json:"amount" binding:"required"`
	Description string                      `json:"description" binding:"required"`
	PaymentMode models.PaymentMode          `json:"payment_mode"`
}

// RecordManualCashEntry posts a hand-entered cash row. Sales and
// purchases must go through their own workflows so stock and payables
// stay in step; only payments and expenses are accepted here.
func RecordManualCashEntry(ctx context.Context, input *NewCashEntry) (*models.Transaction, error) {
	logger := config.GetLogger()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}
	if input.Type != models.TransactionTypePayment && input.Type != models.TransactionTypeExpense {
		return nil, utils.NewValidationError("manual entries must be PAYMENT or EXPENSE")
	}
	if input.Direction != models.TransactionDirectionIn && input.Direction != models.TransactionDirectionOut {
		return nil, utils.NewValidationError("direction must be IN or OUT")
	}
	if !input.Amount.IsPositive() {
		return nil, utils.NewValidationError("amount must be positive")
	}

	paymentMode := input.PaymentMode
	if paymentMode == "" {
		paymentMode = models.PaymentModeCash
	}

	release := ObtainUserRedisLock(ctx, userId, logger)
	defer release()

	entry := models.Transaction{
		UserId:      userId,
		Type:        input.Type,
		Direction:   input.Direction,
		Amount:      input.Amount,
		Description: input.Description,
		EntrySource: models.EntrySourceManual,
		PaymentMode: paymentMode,
	}

	err := postWithUserLock(ctx, userId, func(tx *gorm.DB) error {
		if err := models.AppendCashEntry(tx, &entry); err != nil {
			config.LogError(logger, "cashEntryWorkflow.go", "RecordManualCashEntry", "AppendCashEntry", input, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
