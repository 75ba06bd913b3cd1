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

// SupplierTransaction is one row of a supplier's payable ledger.
// PURCHASE increases the balance (more owed to the supplier); PAYMENT
// and ADJUSTMENT decrease it. Append-only, same contract as the cash
// ledger.
type SupplierTransaction struct {
	ID             int                     `gorm:"primary_key" json:"id"`
	UserId         int                     `gorm:"index;not null" json:"user_id"`
	SupplierId     int                     `gorm:"index;not null;index:idx_suptxn_sup_created,priority:1" json:"supplier_id"`
	Type           SupplierTransactionType `gorm:"size:20;not null" json:"type"`
	Amount         decimal.Decimal         `gorm:"type:decimal(20,4);not null" json:"amount"`
	Balance        decimal.Decimal         `gorm:"type:decimal(20,4);not null" json:"balance"`
	Description    string                  `gorm:"size:255;not null" json:"description"`
	ReferenceId    *int                    `gorm:"index:uniq_suptxn_ref,unique" json:"reference_id"`
	ReferenceModel *ReferenceModel         `gorm:"size:30;index:uniq_suptxn_ref,unique" json:"reference_model"`
	CreatedAt      time.Time               `gorm:"autoCreateTime;index;index:idx_suptxn_sup_created,priority:2" json:"created_at"`
}

func (t *SupplierTransaction) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("immutable ledger: supplier transactions cannot be updated")
}

func (t *SupplierTransaction) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: supplier transactions cannot be deleted")
}

func (t *SupplierTransaction) signedAmount() decimal.Decimal {
	if t.Type == SupplierTransactionTypePurchase {
		return t.Amount
	}
	return t.Amount.Neg()
}

// CurrentSupplierBalance returns the balance of the supplier's latest
// payable ledger row, zero when none. Point read, not a fold.
func CurrentSupplierBalance(tx *gorm.DB, supplierId int) (decimal.Decimal, error) {
	var last SupplierTransaction
	err := tx.Where("supplier_id = ?", supplierId).
		Order("created_at DESC, id DESC").
		Select("balance").
		Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return last.Balance, nil
}

// AppendSupplierEntry derives the new running balance, inserts the row,
// and refreshes the Supplier.CurrentBalance cache in the same storage
// transaction. The cache and the ledger must never be written
// independently of each other.
func AppendSupplierEntry(tx *gorm.DB, entry *SupplierTransaction) error {
	if entry.Amount.IsNegative() {
		return utils.NewValidationError("amount must not be negative")
	}

	current, err := CurrentSupplierBalance(tx, entry.SupplierId)
	if err != nil {
		return err
	}
	entry.Balance = current.Add(entry.signedAmount())

	if err := tx.Create(entry).Error; err != nil {
		if IsDuplicateKeyError(err) {
			return utils.NewStateConflictError("a payable ledger entry already exists for this reference")
		}
		return err
	}

	if err := tx.Model(&Supplier{}).
		Where("id = ?", entry.SupplierId).
		Update("current_balance", entry.Balance).Error; err != nil {
		return err
	}
	return nil
}

// RecomputeSupplierBalance folds the supplier's ledger from row one
// (reconciliation only).
func RecomputeSupplierBalance(tx *gorm.DB, supplierId int) (decimal.Decimal, error) {
	var rows []SupplierTransaction
	err := tx.Where("supplier_id = ?", supplierId).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for i := range rows {
		sum = sum.Add(rows[i].signedAmount())
	}
	return sum, nil
}

type SupplierLedgerFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      *SupplierTransactionType
	Limit     int
}

type SupplierLedgerResponse struct {
	Supplier     *Supplier             `json:"supplier"`
	Transactions []SupplierTransaction `json:"transactions"`
	Balance      decimal.Decimal       `json:"balance"`
}

// GetSupplierLedger returns the supplier with its ledger rows, newest
// first, and the cached balance.
func GetSupplierLedger(ctx context.Context, supplierId int, filter SupplierLedgerFilter) (*SupplierLedgerResponse, error) {
	supplier, err := GetSupplier(ctx, supplierId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Where("supplier_id = ?", supplierId)
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", filter.EndDate)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	limit := filter.Limit
	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	var transactions []SupplierTransaction
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&transactions).Error; err != nil {
		return nil, err
	}

	return &SupplierLedgerResponse{
		Supplier:     supplier,
		Transactions: transactions,
		Balance:      supplier.CurrentBalance,
	}, nil
}
