package workflow

import (
	"context"
	"testing"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

func newTestSupplier(t *testing.T, ctx context.Context, name string) *models.Supplier {
	t.Helper()
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name:  name,
		Phone: "+919876500001",
	})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return supplier
}

func TestRecordPurchaseCreatesBatchPerItemAndPayable(t *testing.T) {
	ctx, userId := newTestUser(t)
	supplier := newTestSupplier(t, ctx, "Purchase Wholesaler")
	rice := newTestProduct(t, ctx, "Purchase Rice", 70)
	dal := newTestProduct(t, ctx, "Purchase Dal", 110)

	purchase, err := RecordPurchase(ctx, &NewPurchase{
		SupplierId: &supplier.ID,
		Items: []NewPurchaseItem{
			{ProductId: rice.ID, Quantity: decimal.NewFromInt(25), Rate: decimal.NewFromInt(60), ExpiryDate: daysFromNow(180)},
			{ProductId: dal.ID, Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(95)},
		},
		Cgst: decimal.NewFromInt(50),
		Sgst: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	// 25*60 + 10*95 + 50 + 50
	want := decimal.NewFromInt(2550)
	if !purchase.TotalAmount.Equal(want) {
		t.Fatalf("total = %s, want %s", purchase.TotalAmount, want)
	}
	if len(purchase.Items) != 2 {
		t.Fatalf("purchase items = %d, want 2", len(purchase.Items))
	}

	for _, item := range purchase.Items {
		if item.BatchId == 0 {
			t.Fatalf("purchase item %d has no batch", item.ProductId)
		}
	}

	riceStock, err := models.TotalStock(ctx, rice.ID)
	if err != nil {
		t.Fatalf("total stock: %v", err)
	}
	if !riceStock.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("rice stock = %s, want 25", riceStock)
	}

	db := config.GetDB()
	payable, err := models.CurrentSupplierBalance(db, supplier.ID)
	if err != nil {
		t.Fatalf("payable balance: %v", err)
	}
	if !payable.Equal(want) {
		t.Fatalf("payable = %s, want %s", payable, want)
	}

	// purchases are on credit: no cash movement yet
	cash, err := models.CurrentCashBalance(db, userId)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !cash.IsZero() {
		t.Fatalf("cash balance = %s, want 0", cash)
	}
}

func TestRecordPurchaseWithoutSupplierSkipsPayable(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "Cash Market Veg", 30)

	purchase, err := RecordPurchase(ctx, &NewPurchase{
		Items: []NewPurchaseItem{
			{ProductId: product.ID, Quantity: decimal.NewFromInt(5), Rate: decimal.NewFromInt(20)},
		},
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	var rows int64
	err = config.GetDB().Model(&models.SupplierTransaction{}).
		Where("reference_id = ? AND reference_model = ?", purchase.ID, models.ReferenceModelPurchase).
		Count(&rows).Error
	if err != nil {
		t.Fatalf("count payable rows: %v", err)
	}
	if rows != 0 {
		t.Fatalf("payable rows = %d, want 0 for supplier-less purchase", rows)
	}
}

func TestRecordPurchaseValidation(t *testing.T) {
	ctx, _ := newTestUser(t)

	_, err := RecordPurchase(ctx, &NewPurchase{})
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("empty purchase error = %v, want VALIDATION", err)
	}

	product := newTestProduct(t, ctx, "Validate Soap Bar", 15)
	_, err = RecordPurchase(ctx, &NewPurchase{
		Items: []NewPurchaseItem{
			{ProductId: product.ID, Quantity: decimal.Zero, Rate: decimal.NewFromInt(10)},
		},
	})
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("zero quantity error = %v, want VALIDATION", err)
	}

	unknown := 999999
	_, err = RecordPurchase(ctx, &NewPurchase{
		SupplierId: &unknown,
		Items: []NewPurchaseItem{
			{ProductId: product.ID, Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(10)},
		},
	})
	if utils.KindOf(err) != utils.ErrorKindNotFound {
		t.Fatalf("unknown supplier error = %v, want NOT_FOUND", err)
	}
}

func TestCreateProductWithStockSingleUnit(t *testing.T) {
	ctx, _ := newTestUser(t)
	supplier := newTestSupplier(t, ctx, "Seed Stock Supplier")

	product, purchase, err := CreateProductWithStock(ctx, &NewProductWithStock{
		Product: models.NewProduct{
			Name:         "Seeded Masala",
			Unit:         "pc",
			SellingPrice: decimal.NewFromInt(45),
		},
		SupplierId: &supplier.ID,
		InitialStock: &NewPurchaseItem{
			Quantity: decimal.NewFromInt(12),
			Rate:     decimal.NewFromInt(30),
		},
	})
	if err != nil {
		t.Fatalf("create product with stock: %v", err)
	}
	if purchase == nil {
		t.Fatal("expected a purchase document for the initial stock")
	}

	stock, err := models.TotalStock(ctx, product.ID)
	if err != nil {
		t.Fatalf("total stock: %v", err)
	}
	if !stock.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("stock = %s, want 12", stock)
	}

	payable, err := models.CurrentSupplierBalance(config.GetDB(), supplier.ID)
	if err != nil {
		t.Fatalf("payable balance: %v", err)
	}
	if !payable.Equal(decimal.NewFromInt(360)) {
		t.Fatalf("payable = %s, want 360", payable)
	}
}

func TestCreateProductWithStockNoInitialStock(t *testing.T) {
	ctx, _ := newTestUser(t)

	product, purchase, err := CreateProductWithStock(ctx, &NewProductWithStock{
		Product: models.NewProduct{Name: "Plain Product", Unit: "pc"},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if purchase != nil {
		t.Fatalf("unexpected purchase document: %+v", purchase)
	}
	if product.ID == 0 {
		t.Fatal("product not persisted")
	}
}
