// seed-admin creates or updates the shop owner account used for first
// login on a fresh install.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/utils"
	"gorm.io/gorm"
)

func main() {
	username := flag.String("username", "shopAdmin", "username of the owner account")
	password := flag.String("password", "", "Required: password to set")
	name := flag.String("name", "Shop Admin", "display name")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "--password is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	hashed, err := utils.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err = db.Where("username = ?", *username).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		user := models.User{
			Username: *username,
			Name:     *name,
			Password: string(hashed),
		}
		if err := db.Create(&user).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created owner account: username=%q\n", *username)
		return
	}

	if err := db.Model(&models.User{}).Where("username = ?", *username).Updates(map[string]any{
		"password": string(hashed),
		"name":     *name,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated owner account: username=%q\n", *username)
}
