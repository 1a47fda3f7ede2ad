package repository

import (
	"errors"

	"github.com/movella/studiopos-backend/internal/models"
	"gorm.io/gorm"
)

// ErrNoClassesLeft is returned when the conditional decrement touched zero
// rows: the card ran out between the read and the write, or two check-ins
// raced for the last class and this one lost.
var ErrNoClassesLeft = errors.New("no classes remaining on card")

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(card *models.CardInstance) error {
	return r.db.Create(card).Error
}

func (r *CardRepository) GetByID(id uint) (*models.CardInstance, error) {
	var card models.CardInstance
	err := r.db.First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func ownerScope(owner models.OwnerRef) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner.CustomerID != nil {
			return db.Where("customer_id = ?", *owner.CustomerID)
		}
		return db.Where("family_member_id = ?", *owner.FamilyMemberID)
	}
}

// GetCurrentForOwner returns the card a check-in should draw from: the newest
// active card whose expiration date has not passed. A newer short-dated card
// must not shadow an older still-valid one, so date-expired cards only come
// back when the owner has nothing valid, letting the caller deny with
// "card expired" instead of "no active card". Returns nil when the owner has
// no active card at all.
func (r *CardRepository) GetCurrentForOwner(owner models.OwnerRef, today string) (*models.CardInstance, error) {
	var card models.CardInstance
	err := r.db.Scopes(ownerScope(owner)).
		Where("status = ? AND expiration_date >= ?", models.CardStatusActive, today).
		Order("purchase_date DESC, id DESC").
		First(&card).Error
	if err == nil {
		return &card, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.Scopes(ownerScope(owner)).
		Where("status = ?", models.CardStatusActive).
		Order("purchase_date DESC, id DESC").
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *CardRepository) ListForOwner(owner models.OwnerRef) ([]models.CardInstance, error) {
	var cards []models.CardInstance
	err := r.db.Scopes(ownerScope(owner)).
		Order("purchase_date DESC, id DESC").
		Find(&cards).Error
	return cards, err
}

func (r *CardRepository) UpdateStatus(id uint, status models.CardStatus) error {
	return r.db.Model(&models.CardInstance{}).Where("id = ?", id).
		Update("status", status).Error
}

// DecrementAndRecord burns one class off a punch card and appends the
// check-in record in a single transaction. The decrement is a conditional
// UPDATE guarded by classes_remaining > 0; when it affects zero rows the
// transaction rolls back with ErrNoClassesLeft, so two concurrent check-ins
// can never both spend the last class. The record is never written without
// the decrement, and vice versa.
func (r *CardRepository) DecrementAndRecord(cardID uint, record *models.CheckInRecord) (*models.CardInstance, error) {
	var card models.CardInstance

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CardInstance{}).
			Where("id = ? AND classes_remaining > 0", cardID).
			UpdateColumn("classes_remaining", gorm.Expr("classes_remaining - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoClassesLeft
		}

		if err := tx.First(&card, cardID).Error; err != nil {
			return err
		}

		if card.ClassesRemaining == 0 {
			card.Status = models.CardStatusExhausted
			if err := tx.Model(&models.CardInstance{}).Where("id = ?", cardID).
				Update("status", models.CardStatusExhausted).Error; err != nil {
				return err
			}
		}

		remaining := card.ClassesRemaining
		record.CardInstanceID = &cardID
		record.RemainingAfter = &remaining
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}

	return &card, nil
}
