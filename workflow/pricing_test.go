package workflow

import (
	"testing"

	"github.com/kiranakhata/retail_backend/models"
	"github.com/shopspring/decimal"
)

func TestResolveUnitPrice(t *testing.T) {
	cases := []struct {
		name    string
		product *models.Product
		batch   *models.Batch
		unit    string
		want    int64
	}{
		{
			name:    "configured selling price wins",
			product: &models.Product{SellingPrice: decimal.NewFromInt(35), CostPrice: decimal.NewFromInt(20)},
			batch:   &models.Batch{SellingPrice: decimal.NewFromInt(99)},
			want:    35,
		},
		{
			name:    "cost price with markup",
			product: &models.Product{CostPrice: decimal.NewFromInt(100)},
			want:    120,
		},
		{
			name:    "batch selling price",
			product: &models.Product{},
			batch:   &models.Batch{SellingPrice: decimal.NewFromInt(42), Mrp: decimal.NewFromInt(50)},
			want:    42,
		},
		{
			name:    "batch mrp",
			product: &models.Product{},
			batch:   &models.Batch{Mrp: decimal.NewFromInt(50)},
			want:    50,
		},
		{
			name:    "kg fallback",
			product: &models.Product{},
			unit:    "kg",
			want:    50,
		},
		{
			name:    "ltr fallback",
			product: &models.Product{},
			unit:    "ltr",
			want:    60,
		},
		{
			name:    "generic unit fallback",
			product: &models.Product{},
			unit:    "pc",
			want:    20,
		},
		{
			name: "no product at all",
			unit: "kg",
			want: 10,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveUnitPrice(tc.product, tc.batch, tc.unit)
			if !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Fatalf("rate = %s, want %d", got, tc.want)
			}
		})
	}
}

func TestFloorSaleTotal(t *testing.T) {
	if got := FloorSaleTotal(decimal.Zero); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("floored total = %s, want 10", got)
	}
	if got := FloorSaleTotal(decimal.NewFromInt(7)); !got.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("positive total changed: %s, want 7", got)
	}
}
