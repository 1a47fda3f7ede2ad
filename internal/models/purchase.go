package models

import "time"

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
	PurchaseStatusRefunded  = "refunded"
)

// CardPurchase tracks one online checkout for a card type. The CardInstance
// is only issued once Stripe confirms the session as paid; the pending row
// keyed by session ID is what the webhook resolves.
type CardPurchase struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	CustomerID      *uint     `json:"customer_id" gorm:"index"`
	FamilyMemberID  *uint     `json:"family_member_id"`
	CardTypeID      uint      `json:"card_type_id" gorm:"not null"`
	Amount          float64   `json:"amount" gorm:"not null"`
	TipAmount       float64   `json:"tip_amount"`
	StripeSessionID string    `json:"stripe_session_id" gorm:"unique;not null"`
	StripeIntentID  string    `json:"stripe_intent_id" gorm:"index"`
	Status          string    `json:"status" gorm:"not null;default:'pending'"`
	CardInstanceID  *uint     `json:"card_instance_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateCheckoutSessionRequest struct {
	CustomerID     *uint   `json:"customer_id"`
	FamilyMemberID *uint   `json:"family_member_id"`
	TipAmount      float64 `json:"tip_amount" validate:"min=0"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
