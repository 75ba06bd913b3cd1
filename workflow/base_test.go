package workflow

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	os.Setenv("DB_DRIVER", "sqlite")
	os.Setenv("DB_NAME", "file:workflow_test?mode=memory&cache=shared")
	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
	os.Exit(m.Run())
}

var testUserSeq int

func newTestUser(t *testing.T) (context.Context, int) {
	t.Helper()
	testUserSeq++
	user := models.User{
		Username: fmt.Sprintf("shop%d", testUserSeq),
		Name:     "Test Shop",
		Password: "hashed",
	}
	if err := config.GetDB().Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	ctx := utils.SetUserIdInContext(context.Background(), user.ID)
	ctx = utils.SetUsernameInContext(ctx, user.Username)
	return ctx, user.ID
}

func newTestProduct(t *testing.T, ctx context.Context, name string, sellingPrice int64) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         name,
		Unit:         "pc",
		SellingPrice: decimal.NewFromInt(sellingPrice),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func newTestBatch(t *testing.T, ctx context.Context, productId int, qty int64, expiry *time.Time) *models.Batch {
	t.Helper()
	batch, err := models.AddBatch(ctx, &models.NewBatch{
		ProductId:  productId,
		Quantity:   decimal.NewFromInt(qty),
		ExpiryDate: expiry,
	})
	if err != nil {
		t.Fatalf("add batch: %v", err)
	}
	return batch
}

func daysFromNow(d int) *time.Time {
	t := time.Now().AddDate(0, 0, d)
	return &t
}
