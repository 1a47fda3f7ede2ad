package repository

import (
	"errors"

	"github.com/movella/studiopos-backend/internal/models"
	"gorm.io/gorm"
)

// ErrPurchaseResolved is returned when the conditional completion claim
// touched zero rows: another webhook delivery already resolved this purchase.
var ErrPurchaseResolved = errors.New("purchase already resolved")

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(purchase *models.CardPurchase) error {
	return r.db.Create(purchase).Error
}

func (r *PurchaseRepository) GetBySessionID(sessionID string) (*models.CardPurchase, error) {
	var purchase models.CardPurchase
	err := r.db.Where("stripe_session_id = ?", sessionID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) GetByIntentID(intentID string) (*models.CardPurchase, error) {
	var purchase models.CardPurchase
	err := r.db.Where("stripe_intent_id = ?", intentID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) Update(purchase *models.CardPurchase) error {
	return r.db.Save(purchase).Error
}

// CompleteAndIssue claims a pending purchase and creates its card in a single
// transaction. The claim is a conditional UPDATE guarded by status = pending
// and checked via RowsAffected; when it touches zero rows the transaction
// rolls back with ErrPurchaseResolved. Stripe retries webhook deliveries,
// sometimes concurrently, and only the delivery that wins the claim issues
// the card.
func (r *PurchaseRepository) CompleteAndIssue(sessionID, intentID string, card *models.CardInstance) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CardPurchase{}).
			Where("stripe_session_id = ? AND status = ?", sessionID, models.PurchaseStatusPending).
			Updates(map[string]interface{}{
				"status":           models.PurchaseStatusCompleted,
				"stripe_intent_id": intentID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPurchaseResolved
		}

		if err := tx.Create(card).Error; err != nil {
			return err
		}

		return tx.Model(&models.CardPurchase{}).
			Where("stripe_session_id = ?", sessionID).
			Update("card_instance_id", card.ID).Error
	})
}

func (r *PurchaseRepository) GetHistory(limit int) ([]models.CardPurchase, error) {
	var purchases []models.CardPurchase
	err := r.db.Order("created_at DESC").Limit(limit).Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepository) GetCustomerHistory(customerID uint) ([]models.CardPurchase, error) {
	var purchases []models.CardPurchase
	err := r.db.Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

// RevenueBetween sums issued cards over a purchase-date range, split by how
// they were paid. Runs over card instances, not purchases, so admin cash
// passes are counted too.
func (r *PurchaseRepository) RevenueBetween(from, to string) (*models.RevenueSummary, error) {
	summary := &models.RevenueSummary{From: from, To: to}

	row := r.db.Model(&models.CardInstance{}).
		Select(`COALESCE(SUM(amount_paid) FILTER (WHERE issued_via = ?), 0),
			COALESCE(SUM(amount_paid) FILTER (WHERE issued_via = ?), 0),
			COALESCE(SUM(tip_amount), 0),
			COUNT(*)`,
			models.IssuedViaOnlinePayment, models.IssuedViaAdminCash).
		Where("purchase_date BETWEEN ? AND ?", from, to).
		Row()

	err := row.Scan(&summary.OnlineRevenue, &summary.CashRevenue,
		&summary.TipTotal, &summary.CardsSold)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
