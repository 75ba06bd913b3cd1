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

// Transaction is one row of the global cash ledger. Each row carries the
// running balance after itself; the latest row for a user IS the user's
// cash balance. Rows are append-only.
type Transaction struct {
	ID                int                  `gorm:"primary_key" json:"id"`
	UserId            int                  `gorm:"index;not null;index:idx_txn_user_created,priority:1" json:"user_id"`
	Type              TransactionType      `gorm:"size:20;not null" json:"type"`
	Direction         TransactionDirection `gorm:"size:5;not null" json:"direction"`
	Amount            decimal.Decimal      `gorm:"type:decimal(20,4);not null" json:"amount"`
	Balance           decimal.Decimal      `gorm:"type:decimal(20,4);not null" json:"balance"`
	Description       string               `gorm:"size:255;not null" json:"description"`
	ReferenceId       *int                 `gorm:"index:uniq_txn_ref,unique" json:"reference_id"`
	ReferenceModel    *ReferenceModel      `gorm:"size:30;index:uniq_txn_ref,unique" json:"reference_model"`
	EntrySource       EntrySource          `gorm:"size:20;not null;default:'MANUAL'" json:"entry_source"`
	PaymentMode       PaymentMode          `gorm:"size:10;not null;default:'CASH'" json:"payment_mode"`
	IsSystemGenerated bool                 `gorm:"not null;default:false" json:"is_system_generated"`
	CreatedAt         time.Time            `gorm:"autoCreateTime;index;index:idx_txn_user_created,priority:2" json:"created_at"`
}

// Ledger immutability guardrails: transactions are append-only.

func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("immutable ledger: transactions cannot be updated")
}

func (t *Transaction) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: transactions cannot be deleted")
}

func (t *Transaction) signedAmount() decimal.Decimal {
	if t.Direction == TransactionDirectionIn {
		return t.Amount
	}
	return t.Amount.Neg()
}

// CurrentCashBalance returns the balance of the latest ledger row for the
// user, zero when the ledger is empty. This is a point read of the newest
// row, never a sum. The id tie-break keeps the order strict when two rows
// share a creation timestamp.
func CurrentCashBalance(tx *gorm.DB, userId int) (decimal.Decimal, error) {
	var last Transaction
	err := tx.Where("user_id = ?", userId).
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

// AppendCashEntry derives the row's running balance from the latest row
// and inserts it. Must run inside the caller's transaction, behind the
// per-user posting lock when concurrent appends are possible. A duplicate
// (reference_id, reference_model) pair is rejected by the unique index.
func AppendCashEntry(tx *gorm.DB, entry *Transaction) error {
	if entry.Amount.IsNegative() {
		return utils.NewValidationError("amount must not be negative")
	}
	if entry.Direction != TransactionDirectionIn && entry.Direction != TransactionDirectionOut {
		return utils.NewValidationError("direction must be IN or OUT")
	}

	current, err := CurrentCashBalance(tx, entry.UserId)
	if err != nil {
		return err
	}
	entry.Balance = current.Add(entry.signedAmount())

	if err := tx.Create(entry).Error; err != nil {
		if IsDuplicateKeyError(err) {
			return utils.NewStateConflictError("a ledger entry already exists for this reference")
		}
		return err
	}
	return nil
}

// RecomputeCashBalance folds the user's whole ledger from row one. Used
// by the reconciliation check to audit the latest-row read path; never
// on the hot path.
func RecomputeCashBalance(tx *gorm.DB, userId int) (decimal.Decimal, error) {
	var rows []Transaction
	err := tx.Where("user_id = ?", userId).
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

type CashFlowFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      *TransactionType
	Limit     int
}

type CashFlowResponse struct {
	Transactions   []Transaction   `json:"transactions"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// GetCashFlow lists the acting user's ledger rows, newest first, with
// the cached current balance.
func GetCashFlow(ctx context.Context, filter CashFlowFilter) (*CashFlowResponse, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Where("user_id = ?", userId)
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

	var transactions []Transaction
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&transactions).Error; err != nil {
		return nil, err
	}

	balance, err := CurrentCashBalance(db.WithContext(ctx), userId)
	if err != nil {
		return nil, err
	}

	return &CashFlowResponse{Transactions: transactions, CurrentBalance: balance}, nil
}

// MonthlyCashTotal sums this month's ledger amounts for the given types.
func MonthlyCashTotal(ctx context.Context, userId int, types []TransactionType) (decimal.Decimal, error) {
	start, end := utils.GetThisMonthRange()

	var total decimal.NullDecimal
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&Transaction{}).
		Select("SUM(amount)").
		Where("user_id = ? AND type IN ? AND created_at BETWEEN ? AND ?", userId, types, start, end).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
