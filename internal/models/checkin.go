package models

import "time"

// DenialReason is the business reason a check-in was refused. Denials are
// normal negative results, not errors; the desk shows the reason verbatim.
type DenialReason string

const (
	DenialNotBirthday     DenialReason = "not birthday"
	DenialBirthdayUsed    DenialReason = "already used today"
	DenialNoActiveCard    DenialReason = "no active card"
	DenialCardExpired     DenialReason = "card expired"
	DenialNoClassesLeft   DenialReason = "no classes remaining"
	DenialCheckInConflict DenialReason = "check-in failed, please try again"
)

// CheckInRecord is the append-only attendance history. CardInstanceID is nil
// for birthday check-ins, which consume no balance. CheckInDate carries the
// studio-local calendar day so that "already checked in today" queries do not
// depend on timestamp timezone math.
type CheckInRecord struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	CustomerID        *uint     `json:"customer_id" gorm:"index"`
	FamilyMemberID    *uint     `json:"family_member_id" gorm:"index"`
	CardInstanceID    *uint     `json:"card_instance_id"`
	RemainingAfter    *int      `json:"remaining_after"`
	PerformedBy       uint      `json:"performed_by" gorm:"not null"`
	IsBirthdayCheckIn bool      `json:"is_birthday_check_in" gorm:"not null;default:false"`
	CheckInDate       string    `json:"check_in_date" gorm:"type:varchar(10);index;not null"`
	CreatedAt         time.Time `json:"created_at"`
}

type CheckInRequest struct {
	CustomerID        *uint  `json:"customer_id"`
	FamilyMemberID    *uint  `json:"family_member_id"`
	BadgeCode         string `json:"badge_code"`
	IsBirthdayCheckIn bool   `json:"is_birthday_check_in"`
}

// CheckInResult is what the desk gets back: either Allowed with the appended
// record (and the card it drew from, if any), or a denial reason.
type CheckInResult struct {
	Allowed bool           `json:"allowed"`
	Reason  DenialReason   `json:"reason,omitempty"`
	Record  *CheckInRecord `json:"record,omitempty"`
	Card    *CardInstance  `json:"card,omitempty"`
}

func Denied(reason DenialReason) CheckInResult {
	return CheckInResult{Allowed: false, Reason: reason}
}

type BirthdayEligibility struct {
	Eligible bool `json:"eligible"`
}
