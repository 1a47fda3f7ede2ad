package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/repository"
	"github.com/movella/studiopos-backend/pkg/clock"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
)

type fakeStripeGateway struct {
	session     *stripe.CheckoutSession
	verifyErr   error
	verifyCalls int
}

func (f *fakeStripeGateway) CreateCheckoutSession(customerEmail, cardName string, amountCents, tipCents int64, metadata map[string]string) (*stripe.CheckoutSession, error) {
	return f.session, nil
}

func (f *fakeStripeGateway) VerifyPaid(sessionID string) error {
	f.verifyCalls++
	return f.verifyErr
}

type fakePurchaseStore struct {
	mu        sync.Mutex
	purchases map[string]*models.CardPurchase
	cards     []*models.CardInstance

	// staleReads makes GetBySessionID keep reporting pending, the way a
	// concurrent webhook delivery reads the row before another one claims it.
	staleReads bool
}

func newFakePurchaseStore(purchases ...*models.CardPurchase) *fakePurchaseStore {
	f := &fakePurchaseStore{purchases: map[string]*models.CardPurchase{}}
	for _, p := range purchases {
		f.purchases[p.StripeSessionID] = p
	}
	return f
}

func (f *fakePurchaseStore) Create(purchase *models.CardPurchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	purchase.ID = uint(len(f.purchases) + 1)
	f.purchases[purchase.StripeSessionID] = purchase
	return nil
}

func (f *fakePurchaseStore) GetBySessionID(sessionID string) (*models.CardPurchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[sessionID]
	if !ok {
		return nil, errors.New("purchase not found")
	}
	copy := *p
	if f.staleReads {
		copy.Status = models.PurchaseStatusPending
	}
	return &copy, nil
}

func (f *fakePurchaseStore) GetByIntentID(intentID string) (*models.CardPurchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.purchases {
		if p.StripeIntentID == intentID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, errors.New("purchase not found")
}

func (f *fakePurchaseStore) CompleteAndIssue(sessionID, intentID string, card *models.CardInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[sessionID]
	if !ok {
		return errors.New("purchase not found")
	}
	if p.Status != models.PurchaseStatusPending {
		return repository.ErrPurchaseResolved
	}
	p.Status = models.PurchaseStatusCompleted
	p.StripeIntentID = intentID
	card.ID = uint(len(f.cards) + 1)
	f.cards = append(f.cards, card)
	p.CardInstanceID = &card.ID
	return nil
}

func (f *fakePurchaseStore) Update(purchase *models.CardPurchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *purchase
	f.purchases[purchase.StripeSessionID] = &copy
	return nil
}

func (f *fakePurchaseStore) GetHistory(limit int) ([]models.CardPurchase, error) {
	return nil, nil
}

func (f *fakePurchaseStore) GetCustomerHistory(customerID uint) ([]models.CardPurchase, error) {
	return nil, nil
}

func newPaymentTestService(gateway *fakeStripeGateway, store *fakePurchaseStore, ledger *fakeCardLedger) *PaymentService {
	owners := &fakeOwnerStore{customers: map[uint]*models.Customer{
		1: {ID: 1, FullName: "Dana", Email: "dana@example.com"},
	}}
	types := &fakeCardTypeStore{types: map[uint]*models.CardType{
		3: {ID: 3, Name: "10 Class Card", ClassCount: 10, ExpirationMonths: 6, Price: 150, IsActive: true},
	}}
	cardService := NewCardService(types, ledger, clock.Fixed{T: testNow})
	return NewPaymentService(gateway, owners, types, store, cardService, nil, zap.NewNop())
}

func completedEvent(sessionID, intentID string) *stripe.Event {
	raw := fmt.Sprintf(`{"id":%q,"payment_intent":%q}`, sessionID, intentID)
	return &stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func pendingPurchase(sessionID string) *models.CardPurchase {
	customerID := uint(1)
	return &models.CardPurchase{
		ID:              1,
		CustomerID:      &customerID,
		CardTypeID:      3,
		Amount:          150,
		StripeSessionID: sessionID,
		Status:          models.PurchaseStatusPending,
	}
}

func TestWebhookDuplicateDeliveryIssuesOneCard(t *testing.T) {
	store := newFakePurchaseStore(pendingPurchase("sess_1"))
	// Both deliveries observe the purchase as pending, as two concurrent
	// deliveries would; the conditional claim has to break the tie.
	store.staleReads = true
	gateway := &fakeStripeGateway{}
	svc := newPaymentTestService(gateway, store, &fakeCardLedger{})

	for i := 0; i < 2; i++ {
		if err := svc.HandleStripeWebhook(completedEvent("sess_1", "pi_1")); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}

	if len(store.cards) != 1 {
		t.Fatalf("issued %d cards for one payment, want exactly 1", len(store.cards))
	}
	p := store.purchases["sess_1"]
	if p.Status != models.PurchaseStatusCompleted {
		t.Fatalf("purchase status = %s, want completed", p.Status)
	}
	if p.StripeIntentID != "pi_1" {
		t.Fatalf("intent id = %q, want pi_1", p.StripeIntentID)
	}
	if p.CardInstanceID == nil {
		t.Fatal("purchase not linked to the issued card")
	}

	card := store.cards[0]
	if card.TotalClasses != 10 || card.ClassesRemaining != 10 {
		t.Fatalf("card balance = %d/%d, want 10/10", card.ClassesRemaining, card.TotalClasses)
	}
	if card.IssuedVia != models.IssuedViaOnlinePayment {
		t.Fatalf("issued via = %s", card.IssuedVia)
	}
}

func TestWebhookCompletedRequiresPaidSession(t *testing.T) {
	store := newFakePurchaseStore(pendingPurchase("sess_1"))
	gateway := &fakeStripeGateway{verifyErr: errors.New("session sess_1 not paid (status unpaid)")}
	svc := newPaymentTestService(gateway, store, &fakeCardLedger{})

	err := svc.HandleStripeWebhook(completedEvent("sess_1", "pi_1"))
	if err == nil {
		t.Fatal("unpaid session accepted")
	}
	if gateway.verifyCalls != 1 {
		t.Fatalf("VerifyPaid called %d times, want 1", gateway.verifyCalls)
	}
	if len(store.cards) != 0 {
		t.Fatal("card issued without payment confirmation")
	}
	if store.purchases["sess_1"].Status != models.PurchaseStatusPending {
		t.Fatal("purchase resolved without payment confirmation")
	}
}

func TestWebhookCompletedAlreadyResolvedIsNoOp(t *testing.T) {
	store := newFakePurchaseStore(pendingPurchase("sess_1"))
	gateway := &fakeStripeGateway{}
	svc := newPaymentTestService(gateway, store, &fakeCardLedger{})

	if err := svc.HandleStripeWebhook(completedEvent("sess_1", "pi_1")); err != nil {
		t.Fatal(err)
	}
	// Serialized retry: the re-read sees completed and returns before
	// touching Stripe again.
	if err := svc.HandleStripeWebhook(completedEvent("sess_1", "pi_1")); err != nil {
		t.Fatal(err)
	}

	if gateway.verifyCalls != 1 {
		t.Fatalf("VerifyPaid called %d times, want 1", gateway.verifyCalls)
	}
	if len(store.cards) != 1 {
		t.Fatalf("issued %d cards, want 1", len(store.cards))
	}
}

func TestWebhookExpiredSessionFailsPurchase(t *testing.T) {
	store := newFakePurchaseStore(pendingPurchase("sess_1"))
	svc := newPaymentTestService(&fakeStripeGateway{}, store, &fakeCardLedger{})

	event := &stripe.Event{
		Type: "checkout.session.expired",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"sess_1"}`)},
	}
	if err := svc.HandleStripeWebhook(event); err != nil {
		t.Fatal(err)
	}

	if store.purchases["sess_1"].Status != models.PurchaseStatusFailed {
		t.Fatalf("purchase status = %s, want failed", store.purchases["sess_1"].Status)
	}
	if len(store.cards) != 0 {
		t.Fatal("card issued for an expired session")
	}
}

func TestWebhookRefundExpiresCard(t *testing.T) {
	store := newFakePurchaseStore(pendingPurchase("sess_1"))
	ledger := &fakeCardLedger{}
	svc := newPaymentTestService(&fakeStripeGateway{}, store, ledger)

	if err := svc.HandleStripeWebhook(completedEvent("sess_1", "pi_1")); err != nil {
		t.Fatal(err)
	}
	cardID := *store.purchases["sess_1"].CardInstanceID

	refund := &stripe.Event{
		Type: "charge.refunded",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"ch_1","payment_intent":"pi_1"}`)},
	}
	if err := svc.HandleStripeWebhook(refund); err != nil {
		t.Fatal(err)
	}

	if store.purchases["sess_1"].Status != models.PurchaseStatusRefunded {
		t.Fatalf("purchase status = %s, want refunded", store.purchases["sess_1"].Status)
	}
	if ledger.updated[cardID] != models.CardStatusExpired {
		t.Fatalf("refunded card status = %s, want expired", ledger.updated[cardID])
	}
}

func TestCreateCheckoutSessionRecordsPending(t *testing.T) {
	customerID := uint(1)
	store := newFakePurchaseStore()
	gateway := &fakeStripeGateway{session: &stripe.CheckoutSession{
		ID:  "sess_9",
		URL: "https://checkout.stripe.example/sess_9",
	}}
	svc := newPaymentTestService(gateway, store, &fakeCardLedger{})

	session, err := svc.CreateCheckoutSession(3, models.CreateCheckoutSessionRequest{
		CustomerID: &customerID,
		TipAmount:  5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if session.ID != "sess_9" || session.URL == "" {
		t.Fatalf("session = %+v", session)
	}

	p := store.purchases["sess_9"]
	if p == nil {
		t.Fatal("pending purchase not recorded")
	}
	if p.Status != models.PurchaseStatusPending {
		t.Fatalf("purchase status = %s, want pending", p.Status)
	}
	if p.Amount != 150 || p.TipAmount != 5 {
		t.Fatalf("amounts = %.2f/%.2f", p.Amount, p.TipAmount)
	}
}

func TestCreateCheckoutSessionRejectsInactiveType(t *testing.T) {
	customerID := uint(1)
	store := newFakePurchaseStore()
	gateway := &fakeStripeGateway{}
	owners := &fakeOwnerStore{customers: map[uint]*models.Customer{1: {ID: 1, Email: "dana@example.com"}}}
	types := &fakeCardTypeStore{types: map[uint]*models.CardType{
		7: {ID: 7, Name: "Retired Card", ClassCount: 5, ExpirationMonths: 3, Price: 60, IsActive: false},
	}}
	cardService := NewCardService(types, &fakeCardLedger{}, clock.Fixed{T: testNow})
	svc := NewPaymentService(gateway, owners, types, store, cardService, nil, zap.NewNop())

	_, err := svc.CreateCheckoutSession(7, models.CreateCheckoutSessionRequest{CustomerID: &customerID})
	if !errors.Is(err, ErrCardTypeNotAvailable) {
		t.Fatalf("got %v, want %v", err, ErrCardTypeNotAvailable)
	}
	if len(store.purchases) != 0 {
		t.Fatal("purchase recorded for inactive card type")
	}
}
