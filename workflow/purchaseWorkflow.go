package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NewPurchaseItem struct {
	ProductId    int             `json:"product_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	Rate         decimal.Decimal `json:"rate" binding:"required"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	Mrp          decimal.Decimal `json:"mrp"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

type NewPurchase struct {
	SupplierId    *int              `json:"supplier_id"`
	InvoiceNumber string            `json:"invoice_number"`
	Date          *time.Time        `json:"date"`
	Items         []NewPurchaseItem `json:"items" binding:"required"`
	Cgst          decimal.Decimal   `json:"cgst"`
	Sgst          decimal.Decimal   `json:"sgst"`
	Igst          decimal.Decimal   `json:"igst"`
}

// RecordPurchase is one atomic unit: a new batch per line item, the
// purchase document, and, when a supplier is named, the payable PURCHASE
// row plus balance cache refresh. Purchases are on credit; no cash row
// is written until the supplier is actually paid.
func RecordPurchase(ctx context.Context, input *NewPurchase) (*models.Purchase, error) {
	logger := config.GetLogger()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}
	if len(input.Items) == 0 {
		return nil, utils.NewValidationError("purchase must have at least one item")
	}

	var supplier *models.Supplier
	if input.SupplierId != nil {
		var err error
		supplier, err = models.GetSupplier(ctx, *input.SupplierId)
		if err != nil {
			return nil, err
		}
	}

	release := ObtainUserRedisLock(ctx, userId, logger)
	defer release()

	purchase := models.Purchase{
		UserId:        userId,
		SupplierId:    input.SupplierId,
		InvoiceNumber: input.InvoiceNumber,
		Cgst:          input.Cgst,
		Sgst:          input.Sgst,
		Igst:          input.Igst,
	}
	if input.Date != nil {
		purchase.Date = *input.Date
	} else {
		purchase.Date = time.Now()
	}

	err := postWithUserLock(ctx, userId, func(tx *gorm.DB) error {
		total := decimal.Zero
		type pendingBatch struct {
			item  NewPurchaseItem
			batch models.Batch
		}
		var pending []pendingBatch

		for _, item := range input.Items {
			if !item.Quantity.IsPositive() {
				return utils.NewValidationError("item quantity must be positive")
			}
			if item.Rate.IsNegative() {
				return utils.NewValidationError("item rate cannot be negative")
			}

			var product models.Product
			err := tx.Where("id = ? AND user_id = ?", item.ProductId, userId).Take(&product).Error
			if err != nil {
				return utils.NewNotFoundError(fmt.Sprintf("product %d not found", item.ProductId))
			}

			batch := models.Batch{
				ProductId:    item.ProductId,
				BatchNumber:  item.BatchNumber,
				ExpiryDate:   item.ExpiryDate,
				Mrp:          item.Mrp,
				PurchaseRate: item.Rate,
				SellingPrice: item.SellingPrice,
				Quantity:     item.Quantity,
			}
			if err := tx.Create(&batch).Error; err != nil {
				config.LogError(logger, "purchaseWorkflow.go", "RecordPurchase", "Create batch", item, err)
				return err
			}

			pending = append(pending, pendingBatch{item: item, batch: batch})
			total = total.Add(item.Rate.Mul(item.Quantity))
		}
		purchase.TotalAmount = total.Add(input.Cgst).Add(input.Sgst).Add(input.Igst)

		for _, p := range pending {
			purchase.Items = append(purchase.Items, models.PurchaseItem{
				ProductId: p.item.ProductId,
				BatchId:   p.batch.ID,
				Quantity:  p.item.Quantity,
				Rate:      p.item.Rate,
				Amount:    p.item.Rate.Mul(p.item.Quantity),
			})
		}

		if err := tx.Create(&purchase).Error; err != nil {
			config.LogError(logger, "purchaseWorkflow.go", "RecordPurchase", "Create purchase", input, err)
			return err
		}

		if supplier != nil {
			referenceModel := models.ReferenceModelPurchase
			entry := models.SupplierTransaction{
				UserId:         userId,
				SupplierId:     supplier.ID,
				Type:           models.SupplierTransactionTypePurchase,
				Amount:         purchase.TotalAmount,
				Description:    fmt.Sprintf("Purchase #%d", purchase.ID),
				ReferenceId:    &purchase.ID,
				ReferenceModel: &referenceModel,
			}
			if err := models.AppendSupplierEntry(tx, &entry); err != nil {
				config.LogError(logger, "purchaseWorkflow.go", "RecordPurchase", "AppendSupplierEntry", purchase.ID, err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

type NewProductWithStock struct {
	Product      models.NewProduct `json:"product" binding:"required"`
	SupplierId   *int              `json:"supplier_id"`
	InitialStock *NewPurchaseItem  `json:"initial_stock"`
}

// CreateProductWithStock creates a product and, when initial stock is
// given, books it like a purchase in the same transaction so the batch,
// the purchase document, and the supplier payable stay consistent from
// day one.
func CreateProductWithStock(ctx context.Context, input *NewProductWithStock) (*models.Product, *models.Purchase, error) {
	if input.InitialStock == nil || !input.InitialStock.Quantity.IsPositive() {
		product, err := models.CreateProduct(ctx, &input.Product)
		return product, nil, err
	}

	logger := config.GetLogger()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, nil, utils.NewValidationError("user id is required")
	}

	if err := utils.ValidateUnique[models.Product](ctx, userId, "name", input.Product.Name, 0); err != nil {
		return nil, nil, utils.NewValidationError(err.Error())
	}

	var supplier *models.Supplier
	if input.SupplierId != nil {
		var err error
		supplier, err = models.GetSupplier(ctx, *input.SupplierId)
		if err != nil {
			return nil, nil, err
		}
	}

	release := ObtainUserRedisLock(ctx, userId, logger)
	defer release()

	product := models.Product{
		UserId:        userId,
		Name:          input.Product.Name,
		Category:      input.Product.Category,
		Unit:          input.Product.Unit,
		MinStockLevel: input.Product.MinStockLevel,
		SellingPrice:  input.Product.SellingPrice,
		CostPrice:     input.Product.CostPrice,
	}
	if product.Unit == "" {
		product.Unit = "pc"
	}

	var purchase models.Purchase

	err := postWithUserLock(ctx, userId, func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		stock := *input.InitialStock
		batch := models.Batch{
			ProductId:    product.ID,
			BatchNumber:  stock.BatchNumber,
			ExpiryDate:   stock.ExpiryDate,
			Mrp:          stock.Mrp,
			PurchaseRate: stock.Rate,
			SellingPrice: stock.SellingPrice,
			Quantity:     stock.Quantity,
		}
		if err := tx.Create(&batch).Error; err != nil {
			config.LogError(logger, "purchaseWorkflow.go", "CreateProductWithStock", "Create batch", stock, err)
			return err
		}

		purchase = models.Purchase{
			UserId:      userId,
			SupplierId:  input.SupplierId,
			Date:        time.Now(),
			TotalAmount: stock.Rate.Mul(stock.Quantity),
			Items: []models.PurchaseItem{{
				ProductId: product.ID,
				BatchId:   batch.ID,
				Quantity:  stock.Quantity,
				Rate:      stock.Rate,
				Amount:    stock.Rate.Mul(stock.Quantity),
			}},
		}
		if err := tx.Create(&purchase).Error; err != nil {
			config.LogError(logger, "purchaseWorkflow.go", "CreateProductWithStock", "Create purchase", input, err)
			return err
		}

		if supplier != nil {
			referenceModel := models.ReferenceModelPurchase
			entry := models.SupplierTransaction{
				UserId:         userId,
				SupplierId:     supplier.ID,
				Type:           models.SupplierTransactionTypePurchase,
				Amount:         purchase.TotalAmount,
				Description:    fmt.Sprintf("Purchase #%d (initial stock for %s)", purchase.ID, product.Name),
				ReferenceId:    &purchase.ID,
				ReferenceModel: &referenceModel,
			}
			if err := models.AppendSupplierEntry(tx, &entry); err != nil {
				config.LogError(logger, "purchaseWorkflow.go", "CreateProductWithStock", "AppendSupplierEntry", purchase.ID, err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &product, &purchase, nil
}
