// ledger-reconcile re-folds every user's cash and payable ledgers and
// reports rows whose stored running balance disagrees with the recomputed
// one. It only reports; it never repairs.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/ledger-reconcile [--user-id N]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"github.com/kiranakhata/retail_backend/workflow"
)

func main() {
	userID := flag.Int("user-id", 0, "Optional: check a single user instead of all")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	var userIds []int
	if *userID > 0 {
		userIds = []int{*userID}
	} else {
		if err := db.Model(&models.User{}).Pluck("id", &userIds).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to list users: %v\n", err)
			os.Exit(1)
		}
	}

	dirty := 0
	for _, id := range userIds {
		ctx := utils.SetUserIdInContext(context.Background(), id)
		report, err := workflow.RunReconciliationChecks(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "user %d: reconciliation failed: %v\n", id, err)
			os.Exit(1)
		}
		if report.Clean {
			continue
		}
		dirty++
		for _, m := range report.Mismatches {
			if m.SupplierId > 0 {
				fmt.Printf("user %d: %s ledger supplier %d: stored=%s recomputed=%s\n",
					id, m.Ledger, m.SupplierId, m.Stored, m.Recomputed)
			} else {
				fmt.Printf("user %d: %s ledger: stored=%s recomputed=%s\n",
					id, m.Ledger, m.Stored, m.Recomputed)
			}
		}
	}

	if dirty > 0 {
		fmt.Printf("%d of %d users have ledger mismatches\n", dirty, len(userIds))
		os.Exit(2)
	}
	fmt.Printf("all %d users clean\n", len(userIds))
}
