package workflow

import (
	"context"
	"testing"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/kiranakhata/retail_backend/voice"
	"github.com/shopspring/decimal"
)

func parseTestVoiceSale(t *testing.T, ctx context.Context, text string) *models.VoiceSale {
	t.Helper()
	voiceSale, err := ParseAndQueueVoiceSale(ctx, voice.NewHeuristicMatcher(), text)
	if err != nil {
		t.Fatalf("parse voice sale: %v", err)
	}
	return voiceSale
}

func TestParseAndQueueVoiceSale(t *testing.T) {
	ctx, _ := newTestUser(t)
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Sugar",
		Unit:         "kg",
		SellingPrice: decimal.NewFromInt(40),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	newTestBatch(t, ctx, product.ID, 10, nil)

	voiceSale := parseTestVoiceSale(t, ctx, "2 kilo cheeni de do")

	if voiceSale.Status != models.VoiceSaleStatusPending {
		t.Fatalf("status = %s, want pending", voiceSale.Status)
	}
	if len(voiceSale.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(voiceSale.Items))
	}
	item := voiceSale.Items[0]
	if item.ProductId == nil || *item.ProductId != product.ID {
		t.Fatalf("matched product = %v, want %d", item.ProductId, product.ID)
	}
	if !item.Quantity.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("quantity = %s, want 2", item.Quantity)
	}
	if item.Unit != "kg" {
		t.Fatalf("unit = %s, want kg", item.Unit)
	}

	pending, err := models.GetPendingVoiceSales(ctx)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != voiceSale.ID {
		t.Fatalf("pending queue = %+v, want the parsed sale", pending)
	}
}

func TestParseVoiceSaleRequiresInventory(t *testing.T) {
	ctx, _ := newTestUser(t)
	_, err := ParseAndQueueVoiceSale(ctx, voice.NewHeuristicMatcher(), "2 kilo cheeni")
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("empty-inventory error = %v, want VALIDATION", err)
	}
}

func TestConfirmVoiceSaleDeductsStockAndPostsCash(t *testing.T) {
	ctx, userId := newTestUser(t)
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Rice",
		Unit:         "kg",
		SellingPrice: decimal.NewFromInt(60),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	newTestBatch(t, ctx, product.ID, 10, nil)

	voiceSale := parseTestVoiceSale(t, ctx, "3 kilo chawal")

	result, err := ConfirmVoiceSale(ctx, voiceSale.ID, nil)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.VoiceSale.Status != models.VoiceSaleStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", result.VoiceSale.Status)
	}
	if result.VoiceSale.ReviewedBy == nil || *result.VoiceSale.ReviewedBy != userId {
		t.Fatalf("reviewed_by = %v, want %d", result.VoiceSale.ReviewedBy, userId)
	}
	if !result.TotalAmount.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("total = %s, want 180", result.TotalAmount)
	}

	stock, err := models.TotalStock(ctx, product.ID)
	if err != nil {
		t.Fatalf("total stock: %v", err)
	}
	if !stock.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("stock = %s, want 7", stock)
	}

	db := config.GetDB()
	var entry models.Transaction
	err = db.Where("reference_id = ? AND reference_model = ?",
		voiceSale.ID, models.ReferenceModelVoiceSale).Take(&entry).Error
	if err != nil {
		t.Fatalf("cash row: %v", err)
	}
	if entry.EntrySource != models.EntrySourceVoiceAI || !entry.IsSystemGenerated {
		t.Fatalf("cash row = %+v, want system-generated VOICE_AI", entry)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("cash amount = %s, want 180", entry.Amount)
	}
}

func TestConfirmVoiceSaleBestEffortOnShortStock(t *testing.T) {
	ctx, userId := newTestUser(t)
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Milk",
		Unit:         "ltr",
		SellingPrice: decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	newTestBatch(t, ctx, product.ID, 1, nil)

	voiceSale := parseTestVoiceSale(t, ctx, "5 litre doodh")

	// the reviewer vouched for the sale, so a shortfall cannot block it
	result, err := ConfirmVoiceSale(ctx, voiceSale.ID, nil)
	if err != nil {
		t.Fatalf("confirm with short stock: %v", err)
	}
	if !result.TotalAmount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("total = %s, want 150", result.TotalAmount)
	}

	stock, err := models.TotalStock(ctx, product.ID)
	if err != nil {
		t.Fatalf("total stock: %v", err)
	}
	if !stock.IsZero() {
		t.Fatalf("stock = %s, want 0 after best-effort deduction", stock)
	}

	balance, err := models.CurrentCashBalance(config.GetDB(), userId)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("cash balance = %s, want 150", balance)
	}
}

func TestConfirmVoiceSaleEditedItemsOverrideProposal(t *testing.T) {
	ctx, _ := newTestUser(t)
	tea, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Tea",
		Unit:         "packet",
		SellingPrice: decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	newTestBatch(t, ctx, tea.ID, 20, nil)

	voiceSale := parseTestVoiceSale(t, ctx, "ek packet chai")

	result, err := ConfirmVoiceSale(ctx, voiceSale.ID, []ConfirmedItem{
		{ProductId: tea.ID, Quantity: decimal.NewFromInt(4), Unit: "packet"},
	})
	if err != nil {
		t.Fatalf("confirm with edits: %v", err)
	}
	if !result.TotalAmount.Equal(decimal.NewFromInt(480)) {
		t.Fatalf("total = %s, want 480 from edited quantity", result.TotalAmount)
	}
	if len(result.VoiceSale.ConfirmedItems) != 1 {
		t.Fatalf("confirmed items = %d, want 1", len(result.VoiceSale.ConfirmedItems))
	}
	if !result.VoiceSale.ConfirmedItems[0].Quantity.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("confirmed quantity = %s, want 4", result.VoiceSale.ConfirmedItems[0].Quantity)
	}
}

func TestVoiceSaleDoubleReviewConflicts(t *testing.T) {
	ctx, _ := newTestUser(t)
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Salt",
		Unit:         "pc",
		SellingPrice: decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	newTestBatch(t, ctx, product.ID, 10, nil)

	voiceSale := parseTestVoiceSale(t, ctx, "do namak")

	if _, err := ConfirmVoiceSale(ctx, voiceSale.ID, nil); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if _, err := ConfirmVoiceSale(ctx, voiceSale.ID, nil); utils.KindOf(err) != utils.ErrorKindStateConflict {
		t.Fatalf("second confirm error = %v, want STATE_CONFLICT", err)
	}
	if _, err := RejectVoiceSale(ctx, voiceSale.ID); utils.KindOf(err) != utils.ErrorKindStateConflict {
		t.Fatalf("reject after confirm error = %v, want STATE_CONFLICT", err)
	}
}

func TestRejectVoiceSaleHasNoLedgerEffects(t *testing.T) {
	ctx, userId := newTestUser(t)
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Oil",
		Unit:         "ltr",
		SellingPrice: decimal.NewFromInt(140),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	newTestBatch(t, ctx, product.ID, 10, nil)

	voiceSale := parseTestVoiceSale(t, ctx, "2 litre tel")

	rejected, err := RejectVoiceSale(ctx, voiceSale.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.VoiceSaleStatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}

	stock, err := models.TotalStock(ctx, product.ID)
	if err != nil {
		t.Fatalf("total stock: %v", err)
	}
	if !stock.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("stock = %s, want untouched 10", stock)
	}
	balance, err := models.CurrentCashBalance(config.GetDB(), userId)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("cash balance = %s, want 0", balance)
	}
}

func TestUpdateVoiceSaleItemsReplacesProposal(t *testing.T) {
	ctx, _ := newTestUser(t)
	flour, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Flour",
		Unit:         "kg",
		SellingPrice: decimal.NewFromInt(45),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	newTestBatch(t, ctx, flour.ID, 10, nil)

	voiceSale := parseTestVoiceSale(t, ctx, "ek kilo atta")

	updated, err := UpdateVoiceSaleItems(ctx, voiceSale.ID, []models.VoiceSaleItem{
		{SpokenName: "atta", MatchedItemName: flour.Name, Quantity: decimal.NewFromInt(3), Unit: "kg", ProductId: &flour.ID},
	})
	if err != nil {
		t.Fatalf("update items: %v", err)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(updated.Items))
	}
	if !updated.Items[0].Quantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("quantity = %s, want 3", updated.Items[0].Quantity)
	}
}
