package workflow

import (
	"testing"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/shopspring/decimal"
)

func TestReconciliationCleanAfterNormalActivity(t *testing.T) {
	ctx, _ := newTestUser(t)
	supplier := newTestSupplier(t, ctx, "Reconcile Wholesaler")
	product := newTestProduct(t, ctx, "Reconcile Poha", 35)

	_, err := RecordPurchase(ctx, &NewPurchase{
		SupplierId: &supplier.ID,
		Items: []NewPurchaseItem{
			{ProductId: product.ID, Quantity: decimal.NewFromInt(30), Rate: decimal.NewFromInt(25)},
		},
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	_, err = RecordSale(ctx, &NewSale{
		Items: []NewSaleItem{{ProductId: product.ID, Quantity: decimal.NewFromInt(10)}},
	})
	if err != nil {
		t.Fatalf("sale: %v", err)
	}
	_, err = RecordSupplierPayment(ctx, &NewSupplierPayment{
		SupplierId: supplier.ID,
		Amount:     decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("payment: %v", err)
	}

	report, err := RunReconciliationChecks(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !report.Clean {
		t.Fatalf("report not clean: %+v", report.Mismatches)
	}
}

func TestReconciliationDetectsCorruptedCache(t *testing.T) {
	ctx, _ := newTestUser(t)
	supplier := newTestSupplier(t, ctx, "Corrupt Cache Wholesaler")
	product := newTestProduct(t, ctx, "Corrupt Cache Besan", 80)

	_, err := RecordPurchase(ctx, &NewPurchase{
		SupplierId: &supplier.ID,
		Items: []NewPurchaseItem{
			{ProductId: product.ID, Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(70)},
		},
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	// simulate a cache written outside the append path
	err = config.GetDB().Model(&models.Supplier{}).
		Where("id = ?", supplier.ID).
		Update("current_balance", decimal.NewFromInt(9999)).Error
	if err != nil {
		t.Fatalf("corrupt cache: %v", err)
	}

	report, err := RunReconciliationChecks(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.Clean {
		t.Fatal("report clean despite corrupted cache")
	}

	found := false
	for _, m := range report.Mismatches {
		if m.Ledger == "payable_cache" && m.SupplierId == supplier.ID {
			found = true
			if !m.Recomputed.Equal(decimal.NewFromInt(700)) {
				t.Fatalf("recomputed = %s, want 700", m.Recomputed)
			}
		}
	}
	if !found {
		t.Fatalf("no payable_cache mismatch reported: %+v", report.Mismatches)
	}
}
