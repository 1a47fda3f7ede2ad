package database

import (
	"log"

	"github.com/movella/studiopos-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase(databaseURL string) *gorm.DB {
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	return db
}

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Staff{},
		&models.Customer{},
		&models.FamilyMember{},
		&models.CardType{},
		&models.CardInstance{},
		&models.CardPurchase{},
		&models.CheckInRecord{},
	)
	if err != nil {
		return err
	}

	return seedCardTypes(db)
}

// seedCardTypes inserts the studio's standard card catalog when it is
// missing, so a fresh deployment is sellable out of the box. Admins can
// adjust prices afterwards.
func seedCardTypes(db *gorm.DB) error {
	cardTypes := []models.CardType{
		{
			Name:             "5-Class Punch Card",
			Description:      "5 drop-in classes, valid 3 months from purchase",
			ClassCount:       5,
			ExpirationMonths: 3,
			Price:            75.00,
			PricePerClass:    15.00,
			Category:         models.CardCategoryPunchCard,
			IsActive:         true,
		},
		{
			Name:             "10-Class Punch Card",
			Description:      "10 drop-in classes, valid 6 months from purchase",
			ClassCount:       10,
			ExpirationMonths: 6,
			Price:            130.00,
			PricePerClass:    13.00,
			Category:         models.CardCategoryPunchCard,
			IsActive:         true,
		},
		{
			Name:             "20-Class Punch Card",
			Description:      "20 drop-in classes, valid 12 months from purchase",
			ClassCount:       20,
			ExpirationMonths: 12,
			Price:            240.00,
			PricePerClass:    12.00,
			Category:         models.CardCategoryPunchCard,
			IsActive:         true,
		},
		{
			Name:             "Monthly Unlimited",
			Description:      "Unlimited classes for one month",
			ClassCount:       0,
			ExpirationMonths: 1,
			Price:            110.00,
			Category:         models.CardCategorySubscription,
			IsActive:         true,
		},
	}

	for _, ct := range cardTypes {
		var count int64
		db.Model(&models.CardType{}).Where("name = ?", ct.Name).Count(&count)
		if count == 0 {
			if err := db.Create(&ct).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
