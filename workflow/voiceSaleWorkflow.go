package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/kiranakhata/retail_backend/voice"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ParseAndQueueVoiceSale runs the matcher over the caller's catalog and
// stores the proposal as a pending review-queue entry. No stock or ledger
// effects happen here.
func ParseAndQueueVoiceSale(ctx context.Context, matcher voice.Matcher, voiceText string) (*models.VoiceSale, error) {
	logger := config.GetLogger()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}
	if voiceText == "" {
		return nil, utils.NewValidationError("voice text is required")
	}

	products, err := models.GetProducts(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, utils.NewValidationError("no inventory items found; add products first")
	}

	catalog := make([]voice.CatalogProduct, 0, len(products))
	for _, p := range products {
		catalog = append(catalog, voice.CatalogProduct{ID: p.ID, Name: p.Name, Unit: p.Unit})
	}

	matched, err := matcher.Match(ctx, voiceText, catalog)
	if err != nil {
		config.LogError(logger, "voiceSaleWorkflow.go", "ParseAndQueueVoiceSale", "Match", voiceText, err)
		return nil, err
	}

	voiceSale := models.VoiceSale{
		UserId:            userId,
		VoiceText:         voiceText,
		OverallConfidence: matched.OverallConfidence,
		NeedsHumanReview:  matched.NeedsHumanReview,
		Status:            models.VoiceSaleStatusPending,
	}
	for _, item := range matched.Items {
		productId := item.ProductId
		voiceSale.Items = append(voiceSale.Items, models.VoiceSaleItem{
			SpokenName:      item.SpokenName,
			MatchedItemName: item.MatchedItemName,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			Confidence:      item.Confidence,
			ProductId:       &productId,
		})
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&voiceSale).Error; err != nil {
		return nil, err
	}
	return &voiceSale, nil
}

type ConfirmedItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Unit      string          `json:"unit"`
}

// ConfirmVoiceSaleResult carries the computed total so the reviewer sees
// the amount the fallback pricing produced.
type ConfirmVoiceSaleResult struct {
	VoiceSale   *models.VoiceSale `json:"voice_sale"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
}

// ConfirmVoiceSale moves a pending proposal to confirmed, deducts stock
// best-effort, and posts the cash row. Unlike RecordSale, a stock
// shortfall here is logged but does not abort: the reviewer has already
// vouched for the sale having happened.
func ConfirmVoiceSale(ctx context.Context, id int, editedItems []ConfirmedItem) (*ConfirmVoiceSaleResult, error) {
	logger := config.GetLogger()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	voiceSale, err := models.GetVoiceSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if voiceSale.Status != models.VoiceSaleStatusPending {
		return nil, utils.NewStateConflictError("voice sale already processed")
	}

	confirmed := make([]models.ConfirmedSaleItem, 0)
	if len(editedItems) > 0 {
		for _, item := range editedItems {
			confirmed = append(confirmed, models.ConfirmedSaleItem{
				VoiceSaleId: voiceSale.ID,
				ProductId:   item.ProductId,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
			})
		}
	} else {
		for _, item := range voiceSale.Items {
			if item.ProductId == nil {
				continue
			}
			confirmed = append(confirmed, models.ConfirmedSaleItem{
				VoiceSaleId: voiceSale.ID,
				ProductId:   *item.ProductId,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
			})
		}
	}

	release := ObtainUserRedisLock(ctx, userId, logger)
	defer release()

	total := decimal.Zero
	err = postWithUserLock(ctx, userId, func(tx *gorm.DB) error {
		// guard against a racing reviewer: only one confirm/reject wins
		now := time.Now()
		res := tx.Model(&models.VoiceSale{}).
			Where("id = ? AND status = ?", voiceSale.ID, models.VoiceSaleStatusPending).
			Updates(map[string]interface{}{
				"status":      models.VoiceSaleStatusConfirmed,
				"reviewed_by": userId,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewStateConflictError("voice sale already processed")
		}

		if len(confirmed) > 0 {
			if err := tx.Create(&confirmed).Error; err != nil {
				return err
			}
		}

		for _, item := range confirmed {
			if !item.Quantity.IsPositive() {
				continue
			}

			// best-effort deduction; a shortfall is logged inside AllocateStock
			if _, err := AllocateStock(tx, logger, item.ProductId, item.Quantity); err != nil {
				if utils.KindOf(err) == utils.ErrorKindInsufficientStock {
					logger.WithFields(logrus.Fields{
						"field":         "voiceSaleWorkflow",
						"voice_sale_id": voiceSale.ID,
						"product_id":    item.ProductId,
					}).Warn("insufficient stock during voice sale confirmation; continuing")
				} else {
					return err
				}
			}

			var product models.Product
			err := tx.Where("id = ? AND user_id = ?", item.ProductId, userId).Take(&product).Error
			var productPtr *models.Product
			if err == nil {
				productPtr = &product
			} else if err != gorm.ErrRecordNotFound {
				return err
			}

			latestBatch, err := models.LatestBatch(tx, item.ProductId)
			if err != nil {
				return err
			}

			unit := item.Unit
			if unit == "" && productPtr != nil {
				unit = productPtr.Unit
			}
			rate := ResolveUnitPrice(productPtr, latestBatch, unit)
			total = total.Add(rate.Mul(item.Quantity))
		}
		total = FloorSaleTotal(total)

		if total.IsPositive() {
			referenceModel := models.ReferenceModelVoiceSale
			entry := models.Transaction{
				UserId:            userId,
				Type:              models.TransactionTypeSale,
				Direction:         models.TransactionDirectionIn,
				Amount:            total,
				Description:       fmt.Sprintf("Voice Sale - %q", voiceSale.VoiceText),
				ReferenceId:       &voiceSale.ID,
				ReferenceModel:    &referenceModel,
				EntrySource:       models.EntrySourceVoiceAI,
				PaymentMode:       models.PaymentModeCash,
				IsSystemGenerated: true,
			}
			if err := models.AppendCashEntry(tx, &entry); err != nil {
				config.LogError(logger, "voiceSaleWorkflow.go", "ConfirmVoiceSale", "AppendCashEntry", voiceSale.ID, err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := models.GetVoiceSale(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ConfirmVoiceSaleResult{VoiceSale: updated, TotalAmount: total}, nil
}

// RejectVoiceSale is terminal and has no stock or ledger effects.
func RejectVoiceSale(ctx context.Context, id int) (*models.VoiceSale, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	voiceSale, err := models.GetVoiceSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if voiceSale.Status != models.VoiceSaleStatusPending {
		return nil, utils.NewStateConflictError("voice sale already processed")
	}

	db := config.GetDB()
	now := time.Now()
	res := db.WithContext(ctx).Model(&models.VoiceSale{}).
		Where("id = ? AND status = ?", voiceSale.ID, models.VoiceSaleStatusPending).
		Updates(map[string]interface{}{
			"status":      models.VoiceSaleStatusRejected,
			"reviewed_by": userId,
			"reviewed_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewStateConflictError("voice sale already processed")
	}
	return models.GetVoiceSale(ctx, id)
}

// UpdateVoiceSaleItems replaces the proposed line set of a still-pending
// voice sale.
func UpdateVoiceSaleItems(ctx context.Context, id int, items []models.VoiceSaleItem) (*models.VoiceSale, error) {
	voiceSale, err := models.GetVoiceSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if voiceSale.Status != models.VoiceSaleStatusPending {
		return nil, utils.NewStateConflictError("voice sale already processed")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("voice_sale_id = ?", voiceSale.ID).Delete(&models.VoiceSaleItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range items {
		items[i].ID = 0
		items[i].VoiceSaleId = voiceSale.ID
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetVoiceSale(ctx, id)
}
