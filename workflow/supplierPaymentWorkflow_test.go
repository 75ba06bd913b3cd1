package workflow

import (
	"testing"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

func TestRecordSupplierPaymentMovesBothLedgers(t *testing.T) {
	ctx, userId := newTestUser(t)
	supplier := newTestSupplier(t, ctx, "Paid Wholesaler")
	product := newTestProduct(t, ctx, "Payment Flour", 55)

	// seed some cash and a payable to pay down
	_, err := RecordManualCashEntry(ctx, &NewCashEntry{
		Type:        models.TransactionTypePayment,
		Direction:   models.TransactionDirectionIn,
		Amount:      decimal.NewFromInt(2000),
		Description: "till float",
	})
	if err != nil {
		t.Fatalf("seed cash: %v", err)
	}
	_, err = RecordPurchase(ctx, &NewPurchase{
		SupplierId: &supplier.ID,
		Items: []NewPurchaseItem{
			{ProductId: product.ID, Quantity: decimal.NewFromInt(20), Rate: decimal.NewFromInt(50)},
		},
	})
	if err != nil {
		t.Fatalf("seed purchase: %v", err)
	}

	payment, err := RecordSupplierPayment(ctx, &NewSupplierPayment{
		SupplierId: supplier.ID,
		Amount:     decimal.NewFromInt(600),
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}

	db := config.GetDB()
	payable, err := models.CurrentSupplierBalance(db, supplier.ID)
	if err != nil {
		t.Fatalf("payable balance: %v", err)
	}
	if !payable.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("payable = %s, want 400", payable)
	}

	cash, err := models.CurrentCashBalance(db, userId)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !cash.Equal(decimal.NewFromInt(1400)) {
		t.Fatalf("cash = %s, want 1400", cash)
	}

	// the cash OUT row must reference the payable row it settles
	var cashRow models.Transaction
	err = db.Where("reference_id = ? AND reference_model = ?",
		payment.ID, models.ReferenceModelSupplierTransaction).Take(&cashRow).Error
	if err != nil {
		t.Fatalf("cash row for payment: %v", err)
	}
	if cashRow.Direction != models.TransactionDirectionOut {
		t.Fatalf("cash row direction = %s, want OUT", cashRow.Direction)
	}
}

func TestRecordSupplierPaymentValidation(t *testing.T) {
	ctx, _ := newTestUser(t)
	supplier := newTestSupplier(t, ctx, "Strict Wholesaler")

	_, err := RecordSupplierPayment(ctx, &NewSupplierPayment{
		SupplierId: supplier.ID,
		Amount:     decimal.Zero,
	})
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("zero amount error = %v, want VALIDATION", err)
	}

	_, err = RecordSupplierPayment(ctx, &NewSupplierPayment{
		SupplierId: 999999,
		Amount:     decimal.NewFromInt(10),
	})
	if utils.KindOf(err) != utils.ErrorKindNotFound {
		t.Fatalf("unknown supplier error = %v, want NOT_FOUND", err)
	}
}

func TestRecordManualCashEntryRestrictsTypes(t *testing.T) {
	ctx, userId := newTestUser(t)

	entry, err := RecordManualCashEntry(ctx, &NewCashEntry{
		Type:        models.TransactionTypeExpense,
		Direction:   models.TransactionDirectionOut,
		Amount:      decimal.NewFromInt(150),
		Description: "electricity bill",
	})
	if err != nil {
		t.Fatalf("record expense: %v", err)
	}
	if entry.EntrySource != models.EntrySourceManual {
		t.Fatalf("entry source = %s, want MANUAL", entry.EntrySource)
	}

	balance, err := models.CurrentCashBalance(config.GetDB(), userId)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(-150)) {
		t.Fatalf("balance = %s, want -150", balance)
	}

	// sale rows only come from the sale workflows
	_, err = RecordManualCashEntry(ctx, &NewCashEntry{
		Type:        models.TransactionTypeSale,
		Direction:   models.TransactionDirectionIn,
		Amount:      decimal.NewFromInt(100),
		Description: "sneaky sale",
	})
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("manual SALE error = %v, want VALIDATION", err)
	}
}
