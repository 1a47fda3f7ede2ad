package service

import (
	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/repository"
)

// CatalogService manages the card type catalog. Types are reference data:
// admins create and edit them, the purchase screen lists the active ones,
// and nothing ever deletes one.
type CatalogService struct {
	cardTypeRepo *repository.CardTypeRepository
}

func NewCatalogService(cardTypeRepo *repository.CardTypeRepository) *CatalogService {
	return &CatalogService{
		cardTypeRepo: cardTypeRepo,
	}
}

func (s *CatalogService) GetActiveCardTypes() ([]models.CardType, error) {
	return s.cardTypeRepo.GetActive()
}

func (s *CatalogService) GetCardTypeByID(id uint) (*models.CardType, error) {
	return s.cardTypeRepo.GetByID(id)
}

func (s *CatalogService) CreateCardType(req models.CreateCardTypeRequest) (*models.CardType, error) {
	category := models.CardCategoryPunchCard
	pricePerClass := 0.0
	if req.ClassCount == 0 {
		category = models.CardCategorySubscription
	} else {
		pricePerClass = req.Price / float64(req.ClassCount)
	}

	cardType := &models.CardType{
		Name:             req.Name,
		Description:      req.Description,
		ClassCount:       req.ClassCount,
		ExpirationMonths: req.ExpirationMonths,
		Price:            req.Price,
		PricePerClass:    pricePerClass,
		Category:         category,
		IsActive:         true,
	}

	if err := s.cardTypeRepo.Create(cardType); err != nil {
		return nil, err
	}
	return cardType, nil
}

// UpdateCardType edits price and validity of an existing type. ClassCount is
// deliberately not editable; changing it would redefine cards already sold.
func (s *CatalogService) UpdateCardType(id uint, req models.UpdateCardTypeRequest) (*models.CardType, error) {
	cardType, err := s.cardTypeRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	cardType.Name = req.Name
	cardType.Description = req.Description
	cardType.ExpirationMonths = req.ExpirationMonths
	cardType.Price = req.Price
	if cardType.ClassCount > 0 {
		cardType.PricePerClass = req.Price / float64(cardType.ClassCount)
	}
	if req.IsActive != nil {
		cardType.IsActive = *req.IsActive
	}

	if err := s.cardTypeRepo.Update(cardType); err != nil {
		return nil, err
	}
	return cardType, nil
}

func (s *CatalogService) DeactivateCardType(id uint) error {
	return s.cardTypeRepo.Deactivate(id)
}
