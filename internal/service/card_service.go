package service

import (
	"errors"
	"fmt"

	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/pkg/clock"
)

// Validation failures for manual pass issuance. These are caller mistakes,
// reported synchronously, never retried.
var (
	ErrInvalidClassCount    = errors.New("class count must be greater than zero")
	ErrExpirationNotFuture  = errors.New("expiration date must be after today")
	ErrCardTypeNotAvailable = errors.New("card type is not available for purchase")
)

// CardTypeStore is the catalog lookup the ledger needs.
type CardTypeStore interface {
	GetByID(id uint) (*models.CardType, error)
}

// CardLedgerStore creates and lists card instances.
type CardLedgerStore interface {
	Create(card *models.CardInstance) error
	ListForOwner(owner models.OwnerRef) ([]models.CardInstance, error)
	UpdateStatus(id uint, status models.CardStatus) error
}

// CardService is the card instance ledger: every card or subscription in
// circulation was issued here, either from a confirmed online purchase or by
// an admin taking cash at the desk.
type CardService struct {
	cardTypes CardTypeStore
	cards     CardLedgerStore
	clock     clock.Clock
}

func NewCardService(cardTypes CardTypeStore, cards CardLedgerStore, clk clock.Clock) *CardService {
	return &CardService{
		cardTypes: cardTypes,
		cards:     cards,
		clock:     clk,
	}
}

// NewCardFromPurchase builds the card a paid online purchase entitles its
// owner to. Nothing is persisted here; the purchase store creates the card
// inside the same transaction that marks the purchase completed, so the card
// and the completion can never exist without each other.
func (s *CardService) NewCardFromPurchase(purchase *models.CardPurchase) (*models.CardInstance, error) {
	cardType, err := s.cardTypes.GetByID(purchase.CardTypeID)
	if err != nil {
		return nil, err
	}

	purchaseDate := s.clock.Today()
	expirationDate, err := models.ExpirationDateFrom(purchaseDate, cardType.ExpirationMonths)
	if err != nil {
		return nil, fmt.Errorf("failed to compute expiration date: %w", err)
	}

	return &models.CardInstance{
		CustomerID:       purchase.CustomerID,
		FamilyMemberID:   purchase.FamilyMemberID,
		CardTypeID:       &cardType.ID,
		TotalClasses:     cardType.ClassCount,
		ClassesRemaining: cardType.ClassCount,
		PurchaseDate:     purchaseDate,
		ExpirationDate:   expirationDate,
		AmountPaid:       purchase.Amount,
		TipAmount:        purchase.TipAmount,
		Status:           models.CardStatusActive,
		IssuedVia:        models.IssuedViaOnlinePayment,
	}, nil
}

// IssueAdminPass creates a punch card without an online payment: cash at the
// desk, a comp, a make-good. Class count must be positive and the expiration
// strictly in the future; "expires today" is rejected on purpose, the pass
// would be dead on arrival tomorrow and surprise everyone today.
func (s *CardService) IssueAdminPass(req models.IssueAdminPassRequest) (*models.CardInstance, error) {
	owner := models.OwnerRef{CustomerID: req.CustomerID, FamilyMemberID: req.FamilyMemberID}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if req.ClassCount <= 0 {
		return nil, ErrInvalidClassCount
	}

	today := s.clock.Today()
	if req.ExpirationDate <= today {
		return nil, ErrExpirationNotFuture
	}

	card := &models.CardInstance{
		CustomerID:       req.CustomerID,
		FamilyMemberID:   req.FamilyMemberID,
		TotalClasses:     req.ClassCount,
		ClassesRemaining: req.ClassCount,
		PurchaseDate:     today,
		ExpirationDate:   req.ExpirationDate,
		AmountPaid:       req.AmountPaid,
		Status:           models.CardStatusActive,
		IssuedVia:        models.IssuedViaAdminCash,
	}

	if err := s.cards.Create(card); err != nil {
		return nil, err
	}
	return card, nil
}

// ExpireCard cuts a card off early, e.g. after a refund.
func (s *CardService) ExpireCard(id uint) error {
	return s.cards.UpdateStatus(id, models.CardStatusExpired)
}

// ListOwnerCards returns the owner's full card history with date expiration
// folded into the reported status.
func (s *CardService) ListOwnerCards(owner models.OwnerRef) ([]models.CardInstance, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	cards, err := s.cards.ListForOwner(owner)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	for i := range cards {
		cards[i].Status = cards[i].EffectiveStatus(today)
	}
	return cards, nil
}
