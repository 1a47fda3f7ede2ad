package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/repository"
	"github.com/movella/studiopos-backend/pkg/clock"
	"go.uber.org/zap"
)

type fakeCardStore struct {
	mu      sync.Mutex
	cards   map[uint]*models.CardInstance
	records []*models.CheckInRecord

	// failDecrements forces the first N DecrementAndRecord calls to report a
	// conflict regardless of balance, to exercise the retry path.
	failDecrements int
}

func (f *fakeCardStore) GetCurrentForOwner(owner models.OwnerRef, today string) (*models.CardInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Valid cards first; a date-expired card only surfaces when the owner
	// holds nothing valid.
	var newest, newestExpired *models.CardInstance
	for _, card := range f.cards {
		if card.Status != models.CardStatusActive {
			continue
		}
		if !ownerMatches(owner, card.CustomerID, card.FamilyMemberID) {
			continue
		}
		if card.ExpirationDate < today {
			if newestExpired == nil || card.ID > newestExpired.ID {
				newestExpired = card
			}
			continue
		}
		if newest == nil || card.ID > newest.ID {
			newest = card
		}
	}
	if newest == nil {
		newest = newestExpired
	}
	if newest == nil {
		return nil, nil
	}
	copy := *newest
	return &copy, nil
}

func (f *fakeCardStore) DecrementAndRecord(cardID uint, record *models.CheckInRecord) (*models.CardInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDecrements > 0 {
		f.failDecrements--
		return nil, repository.ErrNoClassesLeft
	}

	card, ok := f.cards[cardID]
	if !ok || card.ClassesRemaining <= 0 {
		return nil, repository.ErrNoClassesLeft
	}

	card.ClassesRemaining--
	if card.ClassesRemaining == 0 {
		card.Status = models.CardStatusExhausted
	}

	remaining := card.ClassesRemaining
	record.CardInstanceID = &cardID
	record.RemainingAfter = &remaining
	f.records = append(f.records, record)

	copy := *card
	return &copy, nil
}

func (f *fakeCardStore) UpdateStatus(id uint, status models.CardStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if card, ok := f.cards[id]; ok {
		card.Status = status
	}
	return nil
}

type fakeCheckInStore struct {
	mu      sync.Mutex
	records []*models.CheckInRecord
}

func (f *fakeCheckInStore) Create(record *models.CheckInRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeCheckInStore) CountBirthdayOnDate(owner models.OwnerRef, date string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.records {
		if r.IsBirthdayCheckIn && r.CheckInDate == date && ownerMatches(owner, r.CustomerID, r.FamilyMemberID) {
			count++
		}
	}
	return count, nil
}

type fakeOwnerStore struct {
	customers map[uint]*models.Customer
	members   map[uint]*models.FamilyMember
}

func (f *fakeOwnerStore) GetByID(id uint) (*models.Customer, error) {
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, errors.New("customer not found")
}

func (f *fakeOwnerStore) GetFamilyMemberByID(id uint) (*models.FamilyMember, error) {
	if m, ok := f.members[id]; ok {
		return m, nil
	}
	return nil, errors.New("family member not found")
}

func ownerMatches(owner models.OwnerRef, customerID, familyMemberID *uint) bool {
	if owner.CustomerID != nil {
		return customerID != nil && *customerID == *owner.CustomerID
	}
	return familyMemberID != nil && *familyMemberID == *owner.FamilyMemberID
}

// March 15th, mid-morning studio time.
var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestService(cards *fakeCardStore, checkIns *fakeCheckInStore, owners *fakeOwnerStore) *CheckInService {
	return NewCheckInService(cards, checkIns, owners, clock.Fixed{T: testNow}, nil, zap.NewNop())
}

func punchCard(id uint, customerID uint, remaining int) *models.CardInstance {
	return &models.CardInstance{
		ID:               id,
		CustomerID:       &customerID,
		TotalClasses:     10,
		ClassesRemaining: remaining,
		PurchaseDate:     "2024-01-01",
		ExpirationDate:   "2024-07-01",
		Status:           models.CardStatusActive,
		IssuedVia:        models.IssuedViaOnlinePayment,
	}
}

func TestPunchCardCheckInDecrements(t *testing.T) {
	customerID := uint(1)
	cards := &fakeCardStore{cards: map[uint]*models.CardInstance{7: punchCard(7, customerID, 3)}}
	svc := newTestService(cards, &fakeCheckInStore{}, &fakeOwnerStore{})
	owner := models.OwnerRef{CustomerID: &customerID}

	for i := 3; i > 0; i-- {
		result, err := svc.AuthorizeCheckIn(owner, 42, false)
		if err != nil {
			t.Fatalf("check-in %d: %v", 4-i, err)
		}
		if !result.Allowed {
			t.Fatalf("check-in %d denied: %s", 4-i, result.Reason)
		}
		if result.Card.ClassesRemaining != i-1 {
			t.Fatalf("after check-in %d: remaining = %d, want %d", 4-i, result.Card.ClassesRemaining, i-1)
		}
		if result.Record.RemainingAfter == nil || *result.Record.RemainingAfter != i-1 {
			t.Fatalf("record remaining_after not set to %d", i-1)
		}
	}

	// Card is spent; the next attempt finds no active card.
	result, err := svc.AuthorizeCheckIn(owner, 42, false)
	if err != nil {
		t.Fatalf("post-exhaustion check-in: %v", err)
	}
	if result.Allowed {
		t.Fatal("exhausted card allowed a check-in")
	}
	if result.Reason != models.DenialNoActiveCard {
		t.Fatalf("reason = %q, want %q", result.Reason, models.DenialNoActiveCard)
	}
	if cards.cards[7].Status != models.CardStatusExhausted {
		t.Fatalf("card status = %s, want exhausted", cards.cards[7].Status)
	}
}

func TestSubscriptionCheckInNeverDecrements(t *testing.T) {
	customerID := uint(1)
	sub := &models.CardInstance{
		ID:             5,
		CustomerID:     &customerID,
		TotalClasses:   0,
		PurchaseDate:   "2024-03-01",
		ExpirationDate: "2024-04-01",
		Status:         models.CardStatusActive,
	}
	cards := &fakeCardStore{cards: map[uint]*models.CardInstance{5: sub}}
	checkIns := &fakeCheckInStore{}
	svc := newTestService(cards, checkIns, &fakeOwnerStore{})
	owner := models.OwnerRef{CustomerID: &customerID}

	for i := 0; i < 5; i++ {
		result, err := svc.AuthorizeCheckIn(owner, 42, false)
		if err != nil {
			t.Fatalf("subscription check-in %d: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("subscription check-in %d denied: %s", i, result.Reason)
		}
	}

	if sub.ClassesRemaining != 0 || sub.TotalClasses != 0 {
		t.Fatal("subscription balance was mutated")
	}
	if len(checkIns.records) != 5 {
		t.Fatalf("recorded %d check-ins, want 5", len(checkIns.records))
	}
	for _, r := range checkIns.records {
		if r.CardInstanceID == nil || *r.CardInstanceID != 5 {
			t.Fatal("subscription record missing card reference")
		}
		if r.RemainingAfter != nil {
			t.Fatal("subscription record has a balance")
		}
	}
}

func TestCheckInDenials(t *testing.T) {
	customerID := uint(1)
	owner := models.OwnerRef{CustomerID: &customerID}

	t.Run("no active card", func(t *testing.T) {
		svc := newTestService(&fakeCardStore{cards: map[uint]*models.CardInstance{}}, &fakeCheckInStore{}, &fakeOwnerStore{})
		result, err := svc.AuthorizeCheckIn(owner, 42, false)
		if err != nil {
			t.Fatal(err)
		}
		if result.Allowed || result.Reason != models.DenialNoActiveCard {
			t.Fatalf("got allowed=%v reason=%q", result.Allowed, result.Reason)
		}
	})

	t.Run("card expired by date", func(t *testing.T) {
		card := punchCard(3, customerID, 5)
		card.ExpirationDate = "2024-03-14" // yesterday
		cards := &fakeCardStore{cards: map[uint]*models.CardInstance{3: card}}
		svc := newTestService(cards, &fakeCheckInStore{}, &fakeOwnerStore{})

		result, err := svc.AuthorizeCheckIn(owner, 42, false)
		if err != nil {
			t.Fatal(err)
		}
		if result.Allowed || result.Reason != models.DenialCardExpired {
			t.Fatalf("got allowed=%v reason=%q", result.Allowed, result.Reason)
		}
		if card.ClassesRemaining != 5 {
			t.Fatal("expired card balance was touched")
		}
		if cards.cards[3].Status != models.CardStatusExpired {
			t.Fatal("expiration not persisted after read")
		}
	})

	t.Run("expired card does not shadow a valid one", func(t *testing.T) {
		older := punchCard(5, customerID, 4)
		older.PurchaseDate = "2024-01-01"
		newer := punchCard(6, customerID, 3)
		newer.PurchaseDate = "2024-03-10"
		newer.ExpirationDate = "2024-03-14" // short-dated pass, lapsed yesterday
		cards := &fakeCardStore{cards: map[uint]*models.CardInstance{5: older, 6: newer}}
		svc := newTestService(cards, &fakeCheckInStore{}, &fakeOwnerStore{})

		result, err := svc.AuthorizeCheckIn(owner, 42, false)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed {
			t.Fatalf("valid card not used, denied: %s", result.Reason)
		}
		if result.Card.ID != 5 {
			t.Fatalf("drew from card %d, want the valid card 5", result.Card.ID)
		}
	})

	t.Run("expires end of day inclusive", func(t *testing.T) {
		card := punchCard(4, customerID, 5)
		card.ExpirationDate = "2024-03-15" // today
		cards := &fakeCardStore{cards: map[uint]*models.CardInstance{4: card}}
		svc := newTestService(cards, &fakeCheckInStore{}, &fakeOwnerStore{})

		result, err := svc.AuthorizeCheckIn(owner, 42, false)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed {
			t.Fatalf("check-in on expiration day denied: %s", result.Reason)
		}
	})
}

func TestBirthdayCheckIn(t *testing.T) {
	customerID := uint(1)
	owner := models.OwnerRef{CustomerID: &customerID}
	owners := &fakeOwnerStore{customers: map[uint]*models.Customer{
		1: {ID: 1, FullName: "Dana", Birthday: "--03-15"},
	}}

	checkIns := &fakeCheckInStore{}
	svc := newTestService(&fakeCardStore{cards: map[uint]*models.CardInstance{}}, checkIns, owners)

	result, err := svc.AuthorizeCheckIn(owner, 42, true)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("birthday check-in denied: %s", result.Reason)
	}
	if !result.Record.IsBirthdayCheckIn {
		t.Fatal("record not flagged as birthday check-in")
	}
	if result.Record.CardInstanceID != nil {
		t.Fatal("birthday check-in referenced a card")
	}

	// Second attempt the same day is refused.
	result, err = svc.AuthorizeCheckIn(owner, 42, true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Reason != models.DenialBirthdayUsed {
		t.Fatalf("got allowed=%v reason=%q", result.Allowed, result.Reason)
	}

	// Not their birthday.
	owners.customers[1].Birthday = "--07-04"
	result, err = svc.AuthorizeCheckIn(owner, 42, true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Reason != models.DenialNotBirthday {
		t.Fatalf("got allowed=%v reason=%q", result.Allowed, result.Reason)
	}
}

func TestBirthdayEligibility(t *testing.T) {
	memberID := uint(9)
	owner := models.OwnerRef{FamilyMemberID: &memberID}
	owners := &fakeOwnerStore{members: map[uint]*models.FamilyMember{
		9: {ID: 9, CustomerID: 1, FullName: "Kiddo", Birthday: "--03-15"},
	}}
	checkIns := &fakeCheckInStore{}
	svc := newTestService(&fakeCardStore{}, checkIns, owners)

	eligibility, err := svc.BirthdayEligibility(owner)
	if err != nil {
		t.Fatal(err)
	}
	if !eligibility.Eligible {
		t.Fatal("expected eligible on birthday with no prior check-in")
	}

	checkIns.Create(&models.CheckInRecord{
		FamilyMemberID:    &memberID,
		IsBirthdayCheckIn: true,
		CheckInDate:       "2024-03-15",
	})

	eligibility, err = svc.BirthdayEligibility(owner)
	if err != nil {
		t.Fatal(err)
	}
	if eligibility.Eligible {
		t.Fatal("expected ineligible after birthday check-in used")
	}
}

func TestConcurrentLastClassSingleWinner(t *testing.T) {
	customerID := uint(1)
	owner := models.OwnerRef{CustomerID: &customerID}
	cards := &fakeCardStore{cards: map[uint]*models.CardInstance{7: punchCard(7, customerID, 1)}}
	svc := newTestService(cards, &fakeCheckInStore{}, &fakeOwnerStore{})

	var wg sync.WaitGroup
	results := make([]models.CheckInResult, 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.AuthorizeCheckIn(owner, 42, false)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("check-in %d errored: %v", i, err)
		}
	}

	allowed := 0
	for _, r := range results {
		if r.Allowed {
			allowed++
		} else if r.Reason != models.DenialNoClassesLeft &&
			r.Reason != models.DenialNoActiveCard &&
			r.Reason != models.DenialCheckInConflict {
			t.Fatalf("loser denied with unexpected reason %q", r.Reason)
		}
	}
	if allowed != 1 {
		t.Fatalf("%d check-ins succeeded for a single remaining class", allowed)
	}

	card := cards.cards[7]
	if card.ClassesRemaining != 0 {
		t.Fatalf("remaining = %d, want 0", card.ClassesRemaining)
	}
	if card.Status != models.CardStatusExhausted {
		t.Fatalf("status = %s, want exhausted", card.Status)
	}
	if len(cards.records) != 1 {
		t.Fatalf("%d records appended, want exactly 1", len(cards.records))
	}
}

func TestConflictRetriesOnce(t *testing.T) {
	customerID := uint(1)
	owner := models.OwnerRef{CustomerID: &customerID}

	// One spurious conflict: the retry should succeed.
	cards := &fakeCardStore{
		cards:          map[uint]*models.CardInstance{7: punchCard(7, customerID, 2)},
		failDecrements: 1,
	}
	svc := newTestService(cards, &fakeCheckInStore{}, &fakeOwnerStore{})

	result, err := svc.AuthorizeCheckIn(owner, 42, false)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("retry after transient conflict denied: %s", result.Reason)
	}

	// Two conflicts in a row: give up with a retryable denial.
	cards = &fakeCardStore{
		cards:          map[uint]*models.CardInstance{7: punchCard(7, customerID, 2)},
		failDecrements: 2,
	}
	svc = newTestService(cards, &fakeCheckInStore{}, &fakeOwnerStore{})

	result, err = svc.AuthorizeCheckIn(owner, 42, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("check-in allowed despite repeated conflicts")
	}
	if result.Reason != models.DenialCheckInConflict {
		t.Fatalf("reason = %q, want %q", result.Reason, models.DenialCheckInConflict)
	}
}
