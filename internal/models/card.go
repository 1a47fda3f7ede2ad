package models

import "time"

type CardCategory string

const (
	CardCategoryPunchCard    CardCategory = "punch_card"
	CardCategorySubscription CardCategory = "subscription"
)

type CardStatus string

const (
	CardStatusActive    CardStatus = "active"
	CardStatusExpired   CardStatus = "expired"
	CardStatusExhausted CardStatus = "exhausted"
)

type IssuedVia string

const (
	IssuedViaOnlinePayment IssuedVia = "online_payment"
	IssuedViaAdminCash     IssuedVia = "admin_cash"
)

// CardType is the catalog definition of a purchasable card. ClassCount 0 means
// an open-ended monthly subscription; anything else is a punch card.
type CardType struct {
	ID               uint         `json:"id" gorm:"primaryKey"`
	Name             string       `json:"name" gorm:"not null"`
	Description      string       `json:"description"`
	ClassCount       int          `json:"class_count" gorm:"not null"`
	ExpirationMonths int          `json:"expiration_months" gorm:"not null"`
	Price            float64      `json:"price" gorm:"not null"`
	PricePerClass    float64      `json:"price_per_class"`
	Category         CardCategory `json:"category" gorm:"not null"`
	IsActive         bool         `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (t *CardType) IsSubscription() bool {
	return t.ClassCount == 0
}

// CardInstance is one issued card or subscription. Owned by exactly one
// customer or one family member, never both. Instances are never deleted;
// exhausted and expired cards stay around for reporting.
type CardInstance struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	CustomerID       *uint      `json:"customer_id" gorm:"index"`
	FamilyMemberID   *uint      `json:"family_member_id" gorm:"index"`
	CardTypeID       *uint      `json:"card_type_id" gorm:"index"`
	TotalClasses     int        `json:"total_classes" gorm:"not null"`
	ClassesRemaining int        `json:"classes_remaining" gorm:"not null"`
	PurchaseDate     string     `json:"purchase_date" gorm:"type:varchar(10);not null"`
	ExpirationDate   string     `json:"expiration_date" gorm:"type:varchar(10);not null"`
	AmountPaid       float64    `json:"amount_paid"`
	TipAmount        float64    `json:"tip_amount"`
	Status           CardStatus `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	IssuedVia        IssuedVia  `json:"issued_via" gorm:"type:varchar(16);not null"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (c *CardInstance) IsSubscription() bool {
	return c.TotalClasses == 0
}

// IsExpired reports whether the card is expired as of the given local
// calendar day (YYYY-MM-DD). Dates are compared as strings on purpose:
// zero-padded ISO dates order lexicographically and comparing them avoids
// the off-by-one-day bugs a timestamp diff picks up around midnight.
// A card expires at the end of its expiration day, inclusive.
func (c *CardInstance) IsExpired(today string) bool {
	if c.Status == CardStatusExpired {
		return true
	}
	return c.ExpirationDate < today
}

// EffectiveStatus folds date expiration into the stored status. Expiration is
// evaluated on read; nothing sweeps the table.
func (c *CardInstance) EffectiveStatus(today string) CardStatus {
	if c.Status == CardStatusExhausted {
		return CardStatusExhausted
	}
	if c.IsExpired(today) {
		return CardStatusExpired
	}
	return c.Status
}

// ExpirationDateFrom computes purchase date + n calendar months, both as
// YYYY-MM-DD strings.
func ExpirationDateFrom(purchaseDate string, months int) (string, error) {
	t, err := time.Parse("2006-01-02", purchaseDate)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, months, 0).Format("2006-01-02"), nil
}

type CreateCardTypeRequest struct {
	Name             string  `json:"name" validate:"required"`
	Description      string  `json:"description"`
	ClassCount       int     `json:"class_count" validate:"min=0"`
	ExpirationMonths int     `json:"expiration_months" validate:"required,min=1"`
	Price            float64 `json:"price" validate:"required,gt=0"`
}

type UpdateCardTypeRequest struct {
	Name             string  `json:"name" validate:"required"`
	Description      string  `json:"description"`
	ExpirationMonths int     `json:"expiration_months" validate:"required,min=1"`
	Price            float64 `json:"price" validate:"required,gt=0"`
	IsActive         *bool   `json:"is_active"`
}

type IssueAdminPassRequest struct {
	CustomerID     *uint   `json:"customer_id"`
	FamilyMemberID *uint   `json:"family_member_id"`
	ClassCount     int     `json:"class_count"`
	ExpirationDate string  `json:"expiration_date" validate:"required,isodate"`
	AmountPaid     float64 `json:"amount_paid" validate:"min=0"`
}
