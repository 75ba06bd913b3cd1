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

type NewSaleItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Rate      *decimal.Decimal `json:"rate"`
}

type NewSale struct {
	Items        []NewSaleItem      `json:"items" binding:"required"`
	PaymentMode  models.PaymentMode `json:"payment_mode"`
	CustomerName string             `json:"customer_name"`
}

// RecordSale is one atomic unit: FEFO stock deduction per line item, the
// sale document, and the cash ledger IN row. Any shortfall aborts the
// whole event.
func RecordSale(ctx context.Context, input *NewSale) (*models.Sale, error) {
	logger := config.GetLogger()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}
	if len(input.Items) == 0 {
		return nil, utils.NewValidationError("sale must have at least one item")
	}
	paymentMode := input.PaymentMode
	if paymentMode == "" {
		paymentMode = models.PaymentModeCash
	}

	release := ObtainUserRedisLock(ctx, userId, logger)
	defer release()

	sale := models.Sale{
		UserId:       userId,
		PaymentMode:  paymentMode,
		CustomerName: input.CustomerName,
		Status:       models.SaleStatusCompleted,
	}

	err := postWithUserLock(ctx, userId, func(tx *gorm.DB) error {
		total := decimal.Zero
		for _, item := range input.Items {
			if !item.Quantity.IsPositive() {
				return utils.NewValidationError("item quantity must be positive")
			}

			var product models.Product
			err := tx.Where("id = ? AND user_id = ?", item.ProductId, userId).Take(&product).Error
			if err != nil {
				return utils.NewNotFoundError(fmt.Sprintf("product %d not found", item.ProductId))
			}

			allocation, err := AllocateStock(tx, logger, item.ProductId, item.Quantity)
			if err != nil {
				return err
			}
			if allocation.Shortfall.IsPositive() {
				return utils.NewInsufficientStockError(fmt.Sprintf(
					"insufficient stock for %s: short by %s", product.Name, allocation.Shortfall.String()))
			}

			rate := decimal.Zero
			if item.Rate != nil {
				rate = *item.Rate
			} else {
				latestBatch, err := models.LatestBatch(tx, item.ProductId)
				if err != nil {
					return err
				}
				rate = ResolveUnitPrice(&product, latestBatch, product.Unit)
			}

			sale.Items = append(sale.Items, models.SaleItem{
				ProductId: item.ProductId,
				Quantity:  item.Quantity,
				Rate:      rate,
			})
			total = total.Add(rate.Mul(item.Quantity))
		}
		sale.TotalAmount = total

		if err := tx.Create(&sale).Error; err != nil {
			config.LogError(logger, "saleWorkflow.go", "RecordSale", "Create sale", input, err)
			return err
		}

		referenceModel := models.ReferenceModelSale
		entry := models.Transaction{
			UserId:         userId,
			Type:           models.TransactionTypeSale,
			Direction:      models.TransactionDirectionIn,
			Amount:         sale.TotalAmount,
			Description:    fmt.Sprintf("Sale #%d", sale.ID),
			ReferenceId:    &sale.ID,
			ReferenceModel: &referenceModel,
			EntrySource:    models.EntrySourceSale,
			PaymentMode:    paymentMode,
		}
		if err := models.AppendCashEntry(tx, &entry); err != nil {
			config.LogError(logger, "saleWorkflow.go", "RecordSale", "AppendCashEntry", sale.ID, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}
