package models

import (
	"log"

	"github.com/kiranakhata/retail_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Product{}, &Batch{},
		&Supplier{}, &SupplierTransaction{},
		&Transaction{}, &CapitalTransaction{},
		&Purchase{}, &PurchaseItem{},
		&Sale{}, &SaleItem{},
		&VoiceSale{}, &VoiceSaleItem{}, &ConfirmedSaleItem{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
