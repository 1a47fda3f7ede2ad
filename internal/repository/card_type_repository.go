package repository

import (
	"github.com/movella/studiopos-backend/internal/models"
	"gorm.io/gorm"
)

type CardTypeRepository struct {
	db *gorm.DB
}

func NewCardTypeRepository(db *gorm.DB) *CardTypeRepository {
	return &CardTypeRepository{db: db}
}

func (r *CardTypeRepository) Create(cardType *models.CardType) error {
	return r.db.Create(cardType).Error
}

func (r *CardTypeRepository) GetByID(id uint) (*models.CardType, error) {
	var cardType models.CardType
	err := r.db.First(&cardType, id).Error
	if err != nil {
		return nil, err
	}
	return &cardType, nil
}

func (r *CardTypeRepository) GetActive() ([]models.CardType, error) {
	var cardTypes []models.CardType
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&cardTypes).Error
	return cardTypes, err
}

func (r *CardTypeRepository) Update(cardType *models.CardType) error {
	return r.db.Save(cardType).Error
}

// Deactivate hides a card type from the catalog. Types are never deleted;
// issued instances keep referencing them.
func (r *CardTypeRepository) Deactivate(id uint) error {
	return r.db.Model(&models.CardType{}).Where("id = ?", id).
		Update("is_active", false).Error
}
