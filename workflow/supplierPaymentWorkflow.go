package workflow

import (
	"context"
	"fmt"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NewSupplierPayment struct {
	SupplierId  int                `json:"supplier_id" binding:"required"`
	Amount      decimal.Decimal    `json:"amount" binding:"required"`
	PaymentMode models.PaymentMode `json:"payment_mode"`
	Description string             `json:"description"`
}

// RecordSupplierPayment posts the payable PAYMENT row (refreshing the
// supplier's balance cache) and the cash OUT row in one transaction. The
// cash row references the payable row, so a replay is rejected by the
// storage-level uniqueness on (reference_id, reference_model).
func RecordSupplierPayment(ctx context.Context, input *NewSupplierPayment) (*models.SupplierTransaction, error) {
	logger := config.GetLogger()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, utils.NewValidationError("payment amount must be positive")
	}

	supplier, err := models.GetSupplier(ctx, input.SupplierId)
	if err != nil {
		return nil, err
	}

	paymentMode := input.PaymentMode
	if paymentMode == "" {
		paymentMode = models.PaymentModeCash
	}
	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Payment to %s", supplier.Name)
	}

	release := ObtainUserRedisLock(ctx, userId, logger)
	defer release()

	payableEntry := models.SupplierTransaction{
		UserId:      userId,
		SupplierId:  supplier.ID,
		Type:        models.SupplierTransactionTypePayment,
		Amount:      input.Amount,
		Description: description,
	}

	err = postWithUserLock(ctx, userId, func(tx *gorm.DB) error {
		if err := models.AppendSupplierEntry(tx, &payableEntry); err != nil {
			config.LogError(logger, "supplierPaymentWorkflow.go", "RecordSupplierPayment", "AppendSupplierEntry", input, err)
			return err
		}

		referenceModel := models.ReferenceModelSupplierTransaction
		cashEntry := models.Transaction{
			UserId:         userId,
			Type:           models.TransactionTypePayment,
			Direction:      models.TransactionDirectionOut,
			Amount:         input.Amount,
			Description:    description,
			ReferenceId:    &payableEntry.ID,
			ReferenceModel: &referenceModel,
			EntrySource:    models.EntrySourceManual,
			PaymentMode:    paymentMode,
		}
		if err := models.AppendCashEntry(tx, &cashEntry); err != nil {
			config.LogError(logger, "supplierPaymentWorkflow.go", "RecordSupplierPayment", "AppendCashEntry", payableEntry.ID, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payableEntry, nil
}
