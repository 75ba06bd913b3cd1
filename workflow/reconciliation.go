package workflow

import (
	"context"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReconciliationMismatch is one detected inconsistency between a stored
// running balance and a recomputed one.
type ReconciliationMismatch struct {
	Ledger     string          `json:"ledger"`
	SupplierId int             `json:"supplier_id,omitempty"`
	Stored     decimal.Decimal `json:"stored"`
	Recomputed decimal.Decimal `json:"recomputed"`
}

type ReconciliationReport struct {
	Mismatches []ReconciliationMismatch `json:"mismatches"`
	Clean      bool                     `json:"clean"`
}

// RunReconciliationChecks re-folds each ledger from the start and compares
// against the latest stored balance, plus each supplier's balance cache.
// Intended for an admin trigger; it only reports, it never repairs.
func RunReconciliationChecks(ctx context.Context) (*ReconciliationReport, error) {
	logger := config.GetLogger()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	report := &ReconciliationReport{Mismatches: []ReconciliationMismatch{}}
	db := config.GetDB().WithContext(ctx)

	storedCash, err := models.CurrentCashBalance(db, userId)
	if err != nil {
		return nil, err
	}
	recomputedCash, err := models.RecomputeCashBalance(db, userId)
	if err != nil {
		return nil, err
	}
	if !storedCash.Equal(recomputedCash) {
		report.Mismatches = append(report.Mismatches, ReconciliationMismatch{
			Ledger:     "cash",
			Stored:     storedCash,
			Recomputed: recomputedCash,
		})
	}

	suppliers, err := models.GetSuppliers(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, supplier := range suppliers {
		storedPayable, err := models.CurrentSupplierBalance(db, supplier.ID)
		if err != nil {
			return nil, err
		}
		recomputedPayable, err := models.RecomputeSupplierBalance(db, supplier.ID)
		if err != nil {
			return nil, err
		}
		if !storedPayable.Equal(recomputedPayable) {
			report.Mismatches = append(report.Mismatches, ReconciliationMismatch{
				Ledger:     "payable",
				SupplierId: supplier.ID,
				Stored:     storedPayable,
				Recomputed: recomputedPayable,
			})
		}
		// the cache must agree with the ledger it mirrors
		if !supplier.CurrentBalance.Equal(storedPayable) {
			report.Mismatches = append(report.Mismatches, ReconciliationMismatch{
				Ledger:     "payable_cache",
				SupplierId: supplier.ID,
				Stored:     supplier.CurrentBalance,
				Recomputed: storedPayable,
			})
		}
	}

	report.Clean = len(report.Mismatches) == 0
	if !report.Clean {
		logger.WithFields(logrus.Fields{
			"field":      "reconciliation",
			"user_id":    userId,
			"mismatches": len(report.Mismatches),
		}).Warn("reconciliation found ledger mismatches")
	} else {
		logger.WithFields(logrus.Fields{
			"field":   "reconciliation",
			"user_id": userId,
		}).Info("reconciliation checks completed")
	}
	return report, nil
}
