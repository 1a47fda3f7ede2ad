package service

import (
	"errors"

	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/repository"
	"github.com/movella/studiopos-backend/pkg/clock"
	"go.uber.org/zap"
)

// CardStore is the slice of the card repository the authorizer needs.
type CardStore interface {
	GetCurrentForOwner(owner models.OwnerRef, today string) (*models.CardInstance, error)
	DecrementAndRecord(cardID uint, record *models.CheckInRecord) (*models.CardInstance, error)
	UpdateStatus(id uint, status models.CardStatus) error
}

// CheckInStore appends no-balance check-in records and answers the
// birthday-already-used query.
type CheckInStore interface {
	Create(record *models.CheckInRecord) error
	CountBirthdayOnDate(owner models.OwnerRef, date string) (int64, error)
}

// OwnerStore resolves an OwnerRef to the person behind it.
type OwnerStore interface {
	GetByID(id uint) (*models.Customer, error)
	GetFamilyMemberByID(id uint) (*models.FamilyMember, error)
}

// LowBalanceMailer is notified when a punch card runs low. Optional.
type LowBalanceMailer interface {
	SendLowBalanceNotice(email, fullName, cardName string, remaining int) error
}

type CheckInService struct {
	cards    CardStore
	checkIns CheckInStore
	owners   OwnerStore
	clock    clock.Clock
	mailer   LowBalanceMailer
	logger   *zap.Logger
}

func NewCheckInService(cards CardStore, checkIns CheckInStore, owners OwnerStore, clk clock.Clock, mailer LowBalanceMailer, logger *zap.Logger) *CheckInService {
	return &CheckInService{
		cards:    cards,
		checkIns: checkIns,
		owners:   owners,
		clock:    clk,
		mailer:   mailer,
		logger:   logger,
	}
}

// AuthorizeCheckIn decides one check-in attempt and applies its state change.
// Birthday requests are handled first and never touch a card. Otherwise the
// owner's current card decides: missing or expired cards deny, subscriptions
// record without spending, punch cards spend one class atomically. Denials
// come back as a normal result with a reason; only infrastructure failures
// surface as errors.
func (s *CheckInService) AuthorizeCheckIn(owner models.OwnerRef, staffID uint, birthdayRequested bool) (models.CheckInResult, error) {
	if err := owner.Validate(); err != nil {
		return models.CheckInResult{}, err
	}

	today := s.clock.Today()

	if birthdayRequested {
		return s.birthdayCheckIn(owner, staffID, today)
	}

	card, err := s.cards.GetCurrentForOwner(owner, today)
	if err != nil {
		return models.CheckInResult{}, err
	}
	if card == nil {
		return models.Denied(models.DenialNoActiveCard), nil
	}

	if card.IsExpired(today) {
		// Expiration is evaluated on read; persist it now that we know.
		if err := s.cards.UpdateStatus(card.ID, models.CardStatusExpired); err != nil {
			s.logger.Warn("failed to persist card expiration",
				zap.Uint("card_id", card.ID), zap.Error(err))
		}
		return models.Denied(models.DenialCardExpired), nil
	}

	record := &models.CheckInRecord{
		CustomerID:     owner.CustomerID,
		FamilyMemberID: owner.FamilyMemberID,
		PerformedBy:    staffID,
		CheckInDate:    today,
	}

	if card.IsSubscription() {
		record.CardInstanceID = &card.ID
		if err := s.checkIns.Create(record); err != nil {
			return models.CheckInResult{}, err
		}
		return models.CheckInResult{Allowed: true, Record: record, Card: card}, nil
	}

	return s.punchCheckIn(owner, card, record, today)
}

func (s *CheckInService) birthdayCheckIn(owner models.OwnerRef, staffID uint, today string) (models.CheckInResult, error) {
	birthday, err := s.ownerBirthday(owner)
	if err != nil {
		return models.CheckInResult{}, err
	}
	if birthday == "" || birthday != s.clock.MonthDay() {
		return models.Denied(models.DenialNotBirthday), nil
	}

	used, err := s.checkIns.CountBirthdayOnDate(owner, today)
	if err != nil {
		return models.CheckInResult{}, err
	}
	if used > 0 {
		return models.Denied(models.DenialBirthdayUsed), nil
	}

	record := &models.CheckInRecord{
		CustomerID:        owner.CustomerID,
		FamilyMemberID:    owner.FamilyMemberID,
		PerformedBy:       staffID,
		IsBirthdayCheckIn: true,
		CheckInDate:       today,
	}
	if err := s.checkIns.Create(record); err != nil {
		return models.CheckInResult{}, err
	}

	return models.CheckInResult{Allowed: true, Record: record}, nil
}

// punchCheckIn spends one class. A conditional decrement that touches zero
// rows means we lost a race; re-read and try once more, then give up with a
// retryable denial rather than guessing.
func (s *CheckInService) punchCheckIn(owner models.OwnerRef, card *models.CardInstance, record *models.CheckInRecord, today string) (models.CheckInResult, error) {
	updated, err := s.cards.DecrementAndRecord(card.ID, record)
	if err == nil {
		s.notifyLowBalance(owner, updated)
		return models.CheckInResult{Allowed: true, Record: record, Card: updated}, nil
	}
	if !errors.Is(err, repository.ErrNoClassesLeft) {
		return models.CheckInResult{}, err
	}

	// Lost the race or the read was stale. Re-read once.
	current, err := s.cards.GetCurrentForOwner(owner, today)
	if err != nil {
		return models.CheckInResult{}, err
	}
	if current == nil || current.ID != card.ID || current.ClassesRemaining <= 0 {
		return models.Denied(models.DenialNoClassesLeft), nil
	}

	updated, err = s.cards.DecrementAndRecord(current.ID, record)
	if err == nil {
		s.notifyLowBalance(owner, updated)
		return models.CheckInResult{Allowed: true, Record: record, Card: updated}, nil
	}
	if errors.Is(err, repository.ErrNoClassesLeft) {
		return models.Denied(models.DenialCheckInConflict), nil
	}
	return models.CheckInResult{}, err
}

// BirthdayEligibility answers the desk's "show the birthday button?" query.
// Read-only; the authoritative check runs again inside AuthorizeCheckIn.
func (s *CheckInService) BirthdayEligibility(owner models.OwnerRef) (models.BirthdayEligibility, error) {
	if err := owner.Validate(); err != nil {
		return models.BirthdayEligibility{}, err
	}

	birthday, err := s.ownerBirthday(owner)
	if err != nil {
		return models.BirthdayEligibility{}, err
	}
	if birthday == "" || birthday != s.clock.MonthDay() {
		return models.BirthdayEligibility{Eligible: false}, nil
	}

	used, err := s.checkIns.CountBirthdayOnDate(owner, s.clock.Today())
	if err != nil {
		return models.BirthdayEligibility{}, err
	}
	return models.BirthdayEligibility{Eligible: used == 0}, nil
}

func (s *CheckInService) ownerBirthday(owner models.OwnerRef) (string, error) {
	if owner.CustomerID != nil {
		customer, err := s.owners.GetByID(*owner.CustomerID)
		if err != nil {
			return "", err
		}
		return customer.Birthday, nil
	}
	member, err := s.owners.GetFamilyMemberByID(*owner.FamilyMemberID)
	if err != nil {
		return "", err
	}
	return member.Birthday, nil
}

func (s *CheckInService) notifyLowBalance(owner models.OwnerRef, card *models.CardInstance) {
	if s.mailer == nil || card == nil || card.ClassesRemaining != 1 || owner.CustomerID == nil {
		return
	}
	customer, err := s.owners.GetByID(*owner.CustomerID)
	if err != nil {
		return
	}
	go func() {
		if err := s.mailer.SendLowBalanceNotice(customer.Email, customer.FullName, "class card", card.ClassesRemaining); err != nil {
			s.logger.Warn("low balance notice failed", zap.String("email", customer.Email), zap.Error(err))
		}
	}()
}
