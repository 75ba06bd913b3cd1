package models

import (
	"context"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

type Supplier struct {
	ID             int             `gorm:"primary_key" json:"id"`
	UserId         int             `gorm:"index;not null" json:"user_id"`
	Name           string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone          string          `gorm:"size:20;not null" json:"phone" binding:"required"`
	Gstin          string          `gorm:"size:20" json:"gstin"`
	Address        string          `gorm:"type:text" json:"address"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	// CurrentBalance caches the latest payable ledger row's balance so
	// reads don't scan the ledger. Written only by AppendSupplierEntry.
	CurrentBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_balance"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name           string          `json:"name" binding:"required"`
	Phone          string          `json:"phone" binding:"required"`
	Gstin          string          `json:"gstin"`
	Address        string          `json:"address"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewSupplier) validate(ctx context.Context, userId int, id int) error {
	if err := utils.ValidateUnique[Supplier](ctx, userId, "name", input.Name, id); err != nil {
		return utils.NewValidationError(err.Error())
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("invalid phone number")
		}
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	supplier := Supplier{
		UserId:         userId,
		Name:           input.Name,
		Phone:          input.Phone,
		Gstin:          input.Gstin,
		Address:        input.Address,
		OpeningBalance: input.OpeningBalance,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&supplier).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// An opening balance is owed from day one; seed the payable ledger so
	// the cache and the ledger agree from the first row.
	if !input.OpeningBalance.IsZero() {
		entry := SupplierTransaction{
			UserId:      userId,
			SupplierId:  supplier.ID,
			Type:        SupplierTransactionTypePurchase,
			Amount:      input.OpeningBalance,
			Description: "Opening balance",
		}
		if err := AppendSupplierEntry(tx.WithContext(ctx), &entry); err != nil {
			tx.Rollback()
			return nil, err
		}
		supplier.CurrentBalance = entry.Balance
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	supplier, err := GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	// Opening balance is fixed after creation; it already seeded the ledger.
	supplier.Name = input.Name
	supplier.Phone = input.Phone
	supplier.Gstin = input.Gstin
	supplier.Address = input.Address

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&Supplier{}).Where("id = ?", supplier.ID).
		Updates(map[string]interface{}{
			"name":    supplier.Name,
			"phone":   supplier.Phone,
			"gstin":   supplier.Gstin,
			"address": supplier.Address,
		}).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var supplier Supplier
	db := config.GetDB()
	err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userId).Take(&supplier).Error
	if err != nil {
		return nil, utils.NewNotFoundError("supplier not found")
	}
	return &supplier, nil
}

func GetSuppliers(ctx context.Context, name *string) ([]*Supplier, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Where("user_id = ?", userId)
	if name != nil && *name != "" {
		query = query.Where("name LIKE ?", "%"+*name+"%")
	}

	var suppliers []*Supplier
	if err := query.Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// GetSupplierBalances lists suppliers with the largest payables first,
// for the dashboard.
func GetSupplierBalances(ctx context.Context) ([]*Supplier, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var suppliers []*Supplier
	db := config.GetDB()
	err := db.WithContext(ctx).
		Select("id", "name", "phone", "current_balance").
		Where("user_id = ?", userId).
		Order("current_balance DESC").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}
