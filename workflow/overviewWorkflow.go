package workflow

import (
	"context"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
)

type AccountOverview struct {
	CashInHand      decimal.Decimal `json:"cash_in_hand"`
	TotalPayables   decimal.Decimal `json:"total_payables"`
	TotalAdvances   decimal.Decimal `json:"total_advances"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses"`
	NetWorth        decimal.Decimal `json:"net_worth"`
}

// GetAccountOverview assembles the dashboard headline numbers. Suppliers
// with a positive balance are money owed; a negative balance means the
// shop has overpaid and holds an advance.
func GetAccountOverview(ctx context.Context) (*AccountOverview, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	db := config.GetDB().WithContext(ctx)
	overview := &AccountOverview{}

	cash, err := models.CurrentCashBalance(db, userId)
	if err != nil {
		return nil, err
	}
	overview.CashInHand = cash

	suppliers, err := models.GetSupplierBalances(ctx)
	if err != nil {
		return nil, err
	}
	for _, supplier := range suppliers {
		if supplier.CurrentBalance.IsPositive() {
			overview.TotalPayables = overview.TotalPayables.Add(supplier.CurrentBalance)
		} else if supplier.CurrentBalance.IsNegative() {
			overview.TotalAdvances = overview.TotalAdvances.Add(supplier.CurrentBalance.Neg())
		}
	}

	revenue, err := models.MonthlyCashTotal(ctx, userId, []models.TransactionType{models.TransactionTypeSale})
	if err != nil {
		return nil, err
	}
	overview.MonthlyRevenue = revenue

	expenses, err := models.MonthlyCashTotal(ctx, userId, []models.TransactionType{
		models.TransactionTypeExpense, models.TransactionTypePayment, models.TransactionTypePurchase,
	})
	if err != nil {
		return nil, err
	}
	overview.MonthlyExpenses = expenses

	overview.NetWorth = overview.CashInHand.Add(overview.TotalAdvances).Sub(overview.TotalPayables)
	return overview, nil
}

type Alerts struct {
	LowStock []*models.ProductStock  `json:"low_stock"`
	Expiring []*models.ExpiringBatch `json:"expiring"`
}

// GetAlerts returns products at or below their minimum stock level and
// batches expiring within 30 days that still hold stock.
func GetAlerts(ctx context.Context) (*Alerts, error) {
	lowStock, err := models.GetLowStockProducts(ctx)
	if err != nil {
		return nil, err
	}
	expiring, err := models.GetExpiringBatches(ctx, 30)
	if err != nil {
		return nil, err
	}
	return &Alerts{LowStock: lowStock, Expiring: expiring}, nil
}
