package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/repository"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
)

// StripeGateway is the slice of the Stripe client the payment flow needs.
type StripeGateway interface {
	CreateCheckoutSession(customerEmail, cardName string, amountCents, tipCents int64, metadata map[string]string) (*stripe.CheckoutSession, error)
	VerifyPaid(sessionID string) error
}

// PurchaseStore persists checkout purchases. CompleteAndIssue must claim the
// pending purchase and create the card atomically, returning
// repository.ErrPurchaseResolved when another delivery already claimed it.
type PurchaseStore interface {
	Create(purchase *models.CardPurchase) error
	GetBySessionID(sessionID string) (*models.CardPurchase, error)
	GetByIntentID(intentID string) (*models.CardPurchase, error)
	CompleteAndIssue(sessionID, intentID string, card *models.CardInstance) error
	Update(purchase *models.CardPurchase) error
	GetHistory(limit int) ([]models.CardPurchase, error)
	GetCustomerHistory(customerID uint) ([]models.CardPurchase, error)
}

// CardIssuer builds cards for paid purchases and cuts them off on refunds.
type CardIssuer interface {
	NewCardFromPurchase(purchase *models.CardPurchase) (*models.CardInstance, error)
	ExpireCard(id uint) error
}

// ReceiptMailer sends the purchase receipt. Optional.
type ReceiptMailer interface {
	SendPurchaseReceipt(email, fullName, cardName string, amount, tip float64) error
}

type PaymentService struct {
	stripe    StripeGateway
	customers OwnerStore
	cardTypes CardTypeStore
	purchases PurchaseStore
	cards     CardIssuer
	mailer    ReceiptMailer
	logger    *zap.Logger
}

func NewPaymentService(stripeGateway StripeGateway, customers OwnerStore, cardTypes CardTypeStore, purchases PurchaseStore, cards CardIssuer, mailer ReceiptMailer, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		stripe:    stripeGateway,
		customers: customers,
		cardTypes: cardTypes,
		purchases: purchases,
		cards:     cards,
		mailer:    mailer,
		logger:    logger,
	}
}

// CreateCheckoutSession opens a Stripe checkout for a card type and records a
// pending purchase keyed by the session ID. The card itself is not issued
// until the webhook confirms payment.
func (s *PaymentService) CreateCheckoutSession(cardTypeID uint, req models.CreateCheckoutSessionRequest) (*models.CheckoutSession, error) {
	owner := models.OwnerRef{CustomerID: req.CustomerID, FamilyMemberID: req.FamilyMemberID}
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	cardType, err := s.cardTypes.GetByID(cardTypeID)
	if err != nil {
		return nil, err
	}
	if !cardType.IsActive {
		return nil, ErrCardTypeNotAvailable
	}

	// Receipts and the Stripe customer email always go to the account
	// holder, even when the card is for a family member.
	customer, err := s.accountHolder(owner)
	if err != nil {
		return nil, err
	}

	amountCents := int64(math.Round(cardType.Price * 100))
	tipCents := int64(math.Round(req.TipAmount * 100))

	session, err := s.stripe.CreateCheckoutSession(
		customer.Email,
		cardType.Name,
		amountCents,
		tipCents,
		map[string]string{
			"card_type_id": fmt.Sprintf("%d", cardTypeID),
			"customer_id":  fmt.Sprintf("%d", customer.ID),
		},
	)
	if err != nil {
		return nil, err
	}

	purchase := &models.CardPurchase{
		CustomerID:      req.CustomerID,
		FamilyMemberID:  req.FamilyMemberID,
		CardTypeID:      cardTypeID,
		Amount:          cardType.Price,
		TipAmount:       req.TipAmount,
		StripeSessionID: session.ID,
		Status:          models.PurchaseStatusPending,
	}

	if err := s.purchases.Create(purchase); err != nil {
		return nil, err
	}

	return &models.CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// HandleStripeWebhook resolves pending purchases. A completed session is the
// payment proof card issuance requires; anything else closes the purchase
// without issuing.
func (s *PaymentService) HandleStripeWebhook(event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return err
		}
		intentID := ""
		if session.PaymentIntent != nil {
			intentID = session.PaymentIntent.ID
		}
		return s.completePurchase(session.ID, intentID)

	case "checkout.session.expired", "checkout.session.async_payment_failed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return err
		}

		purchase, err := s.purchases.GetBySessionID(session.ID)
		if err != nil {
			return err
		}

		purchase.Status = models.PurchaseStatusFailed
		return s.purchases.Update(purchase)

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return err
		}

		if charge.PaymentIntent == nil {
			return nil
		}

		// The intent ID was stored when the purchase completed; a refund
		// for an intent we never completed is not ours to handle.
		purchase, err := s.purchases.GetByIntentID(charge.PaymentIntent.ID)
		if err != nil {
			return err
		}

		purchase.Status = models.PurchaseStatusRefunded
		if err := s.purchases.Update(purchase); err != nil {
			return err
		}

		// The issued card is cut off; history records stay.
		if purchase.CardInstanceID != nil {
			s.logger.Info("marking refunded card expired",
				zap.Uint("card_id", *purchase.CardInstanceID))
			return s.cards.ExpireCard(*purchase.CardInstanceID)
		}
		return nil
	}

	return nil
}

func (s *PaymentService) completePurchase(sessionID, intentID string) error {
	purchase, err := s.purchases.GetBySessionID(sessionID)
	if err != nil {
		return err
	}
	if purchase.Status != models.PurchaseStatusPending {
		return nil
	}

	// The signature check on the webhook proves the event came from Stripe;
	// this proves the session really is paid.
	if err := s.stripe.VerifyPaid(sessionID); err != nil {
		return err
	}

	card, err := s.cards.NewCardFromPurchase(purchase)
	if err != nil {
		return err
	}

	// Stripe retries deliveries, sometimes concurrently. The store's
	// conditional claim decides which delivery issues the card; losing the
	// claim means the work is already done.
	err = s.purchases.CompleteAndIssue(sessionID, intentID, card)
	if errors.Is(err, repository.ErrPurchaseResolved) {
		return nil
	}
	if err != nil {
		return err
	}

	purchase.Status = models.PurchaseStatusCompleted
	purchase.CardInstanceID = &card.ID
	s.sendReceipt(purchase)
	return nil
}

func (s *PaymentService) sendReceipt(purchase *models.CardPurchase) {
	if s.mailer == nil || purchase.CustomerID == nil {
		return
	}

	customer, err := s.customers.GetByID(*purchase.CustomerID)
	if err != nil {
		s.logger.Warn("receipt skipped, customer lookup failed",
			zap.Uint("purchase_id", purchase.ID), zap.Error(err))
		return
	}
	cardType, err := s.cardTypes.GetByID(purchase.CardTypeID)
	if err != nil {
		s.logger.Warn("receipt skipped, card type lookup failed",
			zap.Uint("purchase_id", purchase.ID), zap.Error(err))
		return
	}

	go func() {
		if err := s.mailer.SendPurchaseReceipt(customer.Email, customer.FullName, cardType.Name, purchase.Amount, purchase.TipAmount); err != nil {
			s.logger.Warn("receipt email failed",
				zap.String("email", customer.Email), zap.Error(err))
		}
	}()
}

func (s *PaymentService) GetPurchaseHistory(limit int) ([]models.CardPurchase, error) {
	return s.purchases.GetHistory(limit)
}

func (s *PaymentService) GetCustomerPurchaseHistory(customerID uint) ([]models.CardPurchase, error) {
	return s.purchases.GetCustomerHistory(customerID)
}

func (s *PaymentService) accountHolder(owner models.OwnerRef) (*models.Customer, error) {
	if owner.CustomerID != nil {
		return s.customers.GetByID(*owner.CustomerID)
	}
	member, err := s.customers.GetFamilyMemberByID(*owner.FamilyMemberID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(member.CustomerID)
	if err != nil {
		return nil, errors.New("family member has no account holder")
	}
	return customer, nil
}
