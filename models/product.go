package models

import (
	"context"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int             `gorm:"primary_key" json:"id"`
	UserId        int             `gorm:"index;not null" json:"user_id"`
	Name          string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Category      string          `gorm:"size:50" json:"category"`
	Unit          string          `gorm:"size:20;default:pc" json:"unit"`
	MinStockLevel decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"min_stock_level"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name          string          `json:"name" binding:"required"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
}

// ProductStock is a product joined with its summed batch quantities.
type ProductStock struct {
	Product
	TotalStock  decimal.Decimal `json:"total_stock"`
	OnlineStock decimal.Decimal `json:"online_stock"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	if err := utils.ValidateUnique[Product](ctx, userId, "name", input.Name, 0); err != nil {
		return nil, utils.NewValidationError(err.Error())
	}

	product := Product{
		UserId:        userId,
		Name:          input.Name,
		Category:      input.Category,
		Unit:          input.Unit,
		MinStockLevel: input.MinStockLevel,
		SellingPrice:  input.SellingPrice,
		CostPrice:     input.CostPrice,
	}
	if product.Unit == "" {
		product.Unit = "pc"
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	product, err := GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateUnique[Product](ctx, userId, "name", input.Name, id); err != nil {
		return nil, utils.NewValidationError(err.Error())
	}

	product.Name = input.Name
	product.Category = input.Category
	if input.Unit != "" {
		product.Unit = input.Unit
	}
	product.MinStockLevel = input.MinStockLevel
	product.SellingPrice = input.SellingPrice
	product.CostPrice = input.CostPrice

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&Product{}).Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":            product.Name,
			"category":        product.Category,
			"unit":            product.Unit,
			"min_stock_level": product.MinStockLevel,
			"selling_price":   product.SellingPrice,
			"cost_price":      product.CostPrice,
		}).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var product Product
	db := config.GetDB()
	err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userId).Take(&product).Error
	if err != nil {
		return nil, utils.NewNotFoundError("product not found")
	}
	return &product, nil
}

// GetProducts lists products with stock totals, optionally filtered by
// name substring and category.
func GetProducts(ctx context.Context, name *string, category *string) ([]*ProductStock, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Product{}).
		Select("products.*",
			"COALESCE(SUM(batches.quantity), 0) AS total_stock",
			"COALESCE(SUM(batches.online_stock), 0) AS online_stock").
		Joins("LEFT JOIN batches ON batches.product_id = products.id").
		Where("products.user_id = ?", userId).
		Group("products.id")
	if name != nil && *name != "" {
		query = query.Where("products.name LIKE ?", "%"+*name+"%")
	}
	if category != nil && *category != "" {
		query = query.Where("products.category = ?", *category)
	}

	var products []*ProductStock
	if err := query.Order("products.name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// TotalStock sums a product's batch quantities across all batches.
func TotalStock(ctx context.Context, productId int) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&Batch{}).
		Select("SUM(quantity)").
		Where("product_id = ?", productId).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// GetLowStockProducts lists products whose summed stock has fallen to
// or below their minimum stock level.
func GetLowStockProducts(ctx context.Context) ([]*ProductStock, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var products []*ProductStock
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&Product{}).
		Select("products.*",
			"COALESCE(SUM(batches.quantity), 0) AS total_stock",
			"COALESCE(SUM(batches.online_stock), 0) AS online_stock").
		Joins("LEFT JOIN batches ON batches.product_id = products.id").
		Where("products.user_id = ?", userId).
		Group("products.id").
		Having("COALESCE(SUM(batches.quantity), 0) <= products.min_stock_level").
		Order("total_stock ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
