package service

import (
	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/repository"
	"github.com/movella/studiopos-backend/pkg/clock"
)

// ReportService answers the admin dashboard queries. Everything is computed
// from the ledger and the check-in history on demand; there is no rollup
// table to keep in sync.
type ReportService struct {
	purchaseRepo *repository.PurchaseRepository
	checkInRepo  *repository.CheckInRepository
	customerRepo *repository.CustomerRepository
	clock        clock.Clock
}

func NewReportService(purchaseRepo *repository.PurchaseRepository, checkInRepo *repository.CheckInRepository, customerRepo *repository.CustomerRepository, clk clock.Clock) *ReportService {
	return &ReportService{
		purchaseRepo: purchaseRepo,
		checkInRepo:  checkInRepo,
		customerRepo: customerRepo,
		clock:        clk,
	}
}

func (s *ReportService) Revenue(from, to string) (*models.RevenueSummary, error) {
	return s.purchaseRepo.RevenueBetween(from, to)
}

func (s *ReportService) Attendance(from, to string) (*models.AttendanceReport, error) {
	days, err := s.checkInRepo.AttendanceBetween(from, to)
	if err != nil {
		return nil, err
	}
	return &models.AttendanceReport{From: from, To: to, Days: days}, nil
}

func (s *ReportService) Membership() (*models.MembershipSummary, error) {
	today := s.clock.Today()

	active, subscriptions, err := s.checkInRepo.CountActiveCards(today)
	if err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.Count()
	if err != nil {
		return nil, err
	}

	return &models.MembershipSummary{
		ActiveCards:         active,
		ActiveSubscriptions: subscriptions,
		TotalCustomers:      customers,
	}, nil
}
