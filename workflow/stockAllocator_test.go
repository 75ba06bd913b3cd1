package workflow

import (
	"testing"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

func TestAllocateStockFefoOrder(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "FEFO Milk", 30)

	// deliberately inserted out of expiry order
	late := newTestBatch(t, ctx, product.ID, 10, daysFromNow(30))
	never := newTestBatch(t, ctx, product.ID, 10, nil)
	soon := newTestBatch(t, ctx, product.ID, 10, daysFromNow(5))

	db := config.GetDB()
	tx := db.Begin()
	result, err := AllocateStock(tx, config.GetLogger(), product.ID, decimal.NewFromInt(25))
	if err != nil {
		tx.Rollback()
		t.Fatalf("allocate: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("commit: %v", err)
	}

	if !result.Shortfall.IsZero() {
		t.Fatalf("shortfall = %s, want 0", result.Shortfall)
	}
	if len(result.Deductions) != 3 {
		t.Fatalf("deductions = %d, want 3", len(result.Deductions))
	}
	// nearest expiry first, never-expiring last
	wantOrder := []int{soon.ID, late.ID, never.ID}
	wantDeduct := []int64{10, 10, 5}
	for i, d := range result.Deductions {
		if d.BatchId != wantOrder[i] {
			t.Fatalf("deduction %d hit batch %d, want %d", i, d.BatchId, wantOrder[i])
		}
		if !d.Deducted.Equal(decimal.NewFromInt(wantDeduct[i])) {
			t.Fatalf("deduction %d = %s, want %d", i, d.Deducted, wantDeduct[i])
		}
	}

	var neverBatch models.Batch
	if err := db.Take(&neverBatch, never.ID).Error; err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	if !neverBatch.Quantity.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("never-expiring batch left with %s, want 5", neverBatch.Quantity)
	}
}

func TestAllocateStockExpiryTieBreaksByInsertion(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "Tie Break Bread", 20)

	expiry := daysFromNow(7)
	first := newTestBatch(t, ctx, product.ID, 5, expiry)
	second := newTestBatch(t, ctx, product.ID, 5, expiry)

	db := config.GetDB()
	tx := db.Begin()
	result, err := AllocateStock(tx, config.GetLogger(), product.ID, decimal.NewFromInt(6))
	if err != nil {
		tx.Rollback()
		t.Fatalf("allocate: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("commit: %v", err)
	}

	if len(result.Deductions) != 2 {
		t.Fatalf("deductions = %d, want 2", len(result.Deductions))
	}
	if result.Deductions[0].BatchId != first.ID || result.Deductions[1].BatchId != second.ID {
		t.Fatalf("tie broke out of insertion order: %+v", result.Deductions)
	}
}

func TestAllocateStockReportsShortfall(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "Short Sugar", 40)
	newTestBatch(t, ctx, product.ID, 3, nil)

	db := config.GetDB()
	tx := db.Begin()
	result, err := AllocateStock(tx, config.GetLogger(), product.ID, decimal.NewFromInt(10))
	if err != nil {
		tx.Rollback()
		t.Fatalf("allocate: %v", err)
	}
	tx.Rollback()

	if !result.Shortfall.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("shortfall = %s, want 7", result.Shortfall)
	}
}

func TestAllocateStockZeroAndNegative(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "Edge Salt", 15)
	newTestBatch(t, ctx, product.ID, 4, nil)

	db := config.GetDB()
	tx := db.Begin()
	defer tx.Rollback()

	result, err := AllocateStock(tx, config.GetLogger(), product.ID, decimal.Zero)
	if err != nil {
		t.Fatalf("zero allocation: %v", err)
	}
	if len(result.Deductions) != 0 || !result.Shortfall.IsZero() {
		t.Fatalf("zero allocation touched stock: %+v", result)
	}

	_, err = AllocateStock(tx, config.GetLogger(), product.ID, decimal.NewFromInt(-1))
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("negative allocation error = %v, want VALIDATION", err)
	}
}

func TestQuickAdjustAddTargetsFreshestBatch(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "Adjust Rice", 60)

	newTestBatch(t, ctx, product.ID, 10, daysFromNow(5))
	fresh := newTestBatch(t, ctx, product.ID, 10, daysFromNow(90))
	newTestBatch(t, ctx, product.ID, 10, nil)

	batch, err := QuickAdjust(ctx, product.ID, decimal.NewFromInt(4))
	if err != nil {
		t.Fatalf("quick adjust: %v", err)
	}
	if batch.ID != fresh.ID {
		t.Fatalf("addition hit batch %d, want farthest dated batch %d", batch.ID, fresh.ID)
	}
	if !batch.Quantity.Equal(decimal.NewFromInt(14)) {
		t.Fatalf("quantity = %s, want 14", batch.Quantity)
	}
}

func TestQuickAdjustAddFallsBackToUndatedBatch(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "Adjust Dal", 90)

	undated := newTestBatch(t, ctx, product.ID, 8, nil)

	batch, err := QuickAdjust(ctx, product.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("quick adjust: %v", err)
	}
	if batch.ID != undated.ID {
		t.Fatalf("addition hit batch %d, want the only batch %d", batch.ID, undated.ID)
	}
	if !batch.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("quantity = %s, want 10", batch.Quantity)
	}
}

func TestQuickAdjustDeductTargetsFefoHeadWithoutSpill(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "Adjust Oil", 120)

	head := newTestBatch(t, ctx, product.ID, 5, daysFromNow(3))
	newTestBatch(t, ctx, product.ID, 50, daysFromNow(60))

	batch, err := QuickAdjust(ctx, product.ID, decimal.NewFromInt(-3))
	if err != nil {
		t.Fatalf("quick adjust: %v", err)
	}
	if batch.ID != head.ID {
		t.Fatalf("deduction hit batch %d, want FEFO head %d", batch.ID, head.ID)
	}

	// a deduction larger than the head batch must fail, not spill over
	_, err = QuickAdjust(ctx, product.ID, decimal.NewFromInt(-4))
	if utils.KindOf(err) != utils.ErrorKindInsufficientStock {
		t.Fatalf("oversized deduction error = %v, want INSUFFICIENT_STOCK", err)
	}
}

func TestQuickAdjustValidation(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "No Stock Atta", 45)

	_, err := QuickAdjust(ctx, product.ID, decimal.NewFromInt(1))
	if utils.KindOf(err) != utils.ErrorKindNotFound {
		t.Fatalf("no-batch adjust error = %v, want NOT_FOUND", err)
	}

	newTestBatch(t, ctx, product.ID, 2, nil)
	_, err = QuickAdjust(ctx, product.ID, decimal.Zero)
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("zero-delta error = %v, want VALIDATION", err)
	}
}

func TestAdjustStockChannels(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "Channel Ghee", 500)
	batch := newTestBatch(t, ctx, product.ID, 10, nil)

	updated, err := AdjustStock(ctx, batch.ID, decimal.NewFromInt(5), models.StockChannelOnline)
	if err != nil {
		t.Fatalf("online adjust: %v", err)
	}
	if !updated.OnlineStock.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("online stock = %s, want 5", updated.OnlineStock)
	}
	if !updated.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("offline pool moved: %s, want 10", updated.Quantity)
	}

	// the online pool cannot go negative
	_, err = AdjustStock(ctx, batch.ID, decimal.NewFromInt(-6), models.StockChannelOnline)
	if utils.KindOf(err) != utils.ErrorKindInsufficientStock {
		t.Fatalf("negative online adjust error = %v, want INSUFFICIENT_STOCK", err)
	}

	updated, err = AdjustStock(ctx, batch.ID, decimal.NewFromInt(-10), models.StockChannelOffline)
	if err != nil {
		t.Fatalf("offline adjust: %v", err)
	}
	if !updated.Quantity.IsZero() {
		t.Fatalf("offline stock = %s, want 0", updated.Quantity)
	}
}

func TestAdjustStockOwnership(t *testing.T) {
	ctx, _ := newTestUser(t)
	product := newTestProduct(t, ctx, "Owned Tea", 250)
	batch := newTestBatch(t, ctx, product.ID, 8, nil)

	otherCtx, _ := newTestUser(t)
	_, err := AdjustStock(otherCtx, batch.ID, decimal.NewFromInt(1), models.StockChannelOffline)
	if utils.KindOf(err) != utils.ErrorKindNotFound {
		t.Fatalf("cross-user adjust error = %v, want NOT_FOUND", err)
	}
}
