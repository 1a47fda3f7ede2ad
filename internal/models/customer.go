package models

import (
	"errors"
	"time"
)

// Customer is a studio member. Birthday is stored as a month-day string
// ("--MM-DD") because the year is irrelevant for the birthday check-in
// perk and members often decline to share it.
type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FullName  string    `json:"full_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Phone     string    `json:"phone"`
	Birthday  string    `json:"birthday" gorm:"type:varchar(7)"`
	BadgeCode string    `json:"badge_code" gorm:"unique;not null"`
	Notes     string    `json:"notes"`
	WaiverKey string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FamilyMember is a dependent (usually a child) who attends classes under a
// customer's account. Cards can be issued to a family member directly.
type FamilyMember struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CustomerID uint      `json:"customer_id" gorm:"index;not null"`
	FullName   string    `json:"full_name" gorm:"not null"`
	Birthday   string    `json:"birthday" gorm:"type:varchar(7)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var ErrAmbiguousOwner = errors.New("owner must be exactly one of customer or family member")

// OwnerRef identifies who a card or check-in belongs to: exactly one of
// CustomerID / FamilyMemberID is set.
type OwnerRef struct {
	CustomerID     *uint `json:"customer_id"`
	FamilyMemberID *uint `json:"family_member_id"`
}

func (o OwnerRef) Validate() error {
	if (o.CustomerID == nil) == (o.FamilyMemberID == nil) {
		return ErrAmbiguousOwner
	}
	return nil
}

type CreateCustomerRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday" validate:"omitempty,monthday"`
	Notes    string `json:"notes"`
}

type UpdateCustomerRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday" validate:"omitempty,monthday"`
	Notes    string `json:"notes"`
}

type CreateFamilyMemberRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Birthday string `json:"birthday" validate:"omitempty,monthday"`
}
