// Package main seeds the biller catalog, a base set of exchange rates,
// and the admin user.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mahfaza/internal/config"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
)

var billers = []models.Biller{
	{Name: "City Electricity", Category: "utilities", IsActive: true},
	{Name: "National Water", Category: "utilities", IsActive: true},
	{Name: "Natural Gas Co", Category: "utilities", IsActive: true},
	{Name: "Telecom Mobile", Category: "telecom", IsActive: true},
	{Name: "Broadband Internet", Category: "telecom", IsActive: true},
}

var rates = map[[2]string]string{
	{"EGP", "USD"}: "0.0207",
	{"USD", "EGP"}: "48.30",
	{"EGP", "EUR"}: "0.0190",
	{"EUR", "EGP"}: "52.60",
	{"USD", "EUR"}: "0.92",
	{"EUR", "USD"}: "1.09",
}

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if repositories.CacheService != nil {
			_ = repositories.CacheService.Close()
		}
	}()

	uow := repositories.NewUnitOfWork(repositories.DB)

	for _, b := range billers {
		var existing models.Biller
		err := repositories.DB.Where("name = ?", b.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("failed to check biller %q: %v", b.Name, err)
		}
		biller := b
		if err := uow.Billers.Create(&biller); err != nil {
			log.Fatalf("failed to seed biller %q: %v", b.Name, err)
		}
		log.Printf("seeded biller %q", b.Name)
	}

	for pair, rate := range rates {
		if err := uow.Rates.Upsert(pair[0], pair[1], decimal.RequireFromString(rate)); err != nil {
			log.Fatalf("failed to seed rate %s/%s: %v", pair[0], pair[1], err)
		}
	}
	log.Printf("seeded %d exchange rates", len(rates))

	seedAdmin(uow)
}

func seedAdmin(uow *repositories.UnitOfWork) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	phone := os.Getenv("ADMIN_PHONE")
	if email == "" || password == "" || phone == "" {
		log.Println("ADMIN_EMAIL, ADMIN_PASSWORD, ADMIN_PHONE not set, skipping admin seed")
		return
	}

	if _, err := uow.Users.GetByEmail(email); err == nil {
		log.Println("admin user already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	admin := &models.User{
		Email:    email,
		Password: string(hashed),
		Phone:    phone,
		FullName: "Administrator",
		Role:     "admin",
		Status:   models.UserStatusActive,
	}
	if err := uow.Users.Create(admin); err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}
	log.Printf("seeded admin user %s", email)
}
