package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/repository"
	"github.com/movella/studiopos-backend/pkg/qrcode"
	"github.com/movella/studiopos-backend/pkg/storage"
)

var ErrNoWaiverOnFile = errors.New("customer has no waiver on file")

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	qrService    *qrcode.QRService
	waivers      storage.WaiverStorage
}

func NewCustomerService(customerRepo *repository.CustomerRepository, qrService *qrcode.QRService, waivers storage.WaiverStorage) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		qrService:    qrService,
		waivers:      waivers,
	}
}

func (s *CustomerService) Create(req models.CreateCustomerRequest) (*models.Customer, error) {
	exists, err := s.customerRepo.EmailExists(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("a customer with this email already exists")
	}

	customer := &models.Customer{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  req.Birthday,
		Notes:     req.Notes,
		BadgeCode: uuid.NewString(),
	}

	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) GetByID(id uint) (*models.Customer, error) {
	return s.customerRepo.GetByID(id)
}

func (s *CustomerService) GetByBadgeCode(badgeCode string) (*models.Customer, error) {
	return s.customerRepo.GetByBadgeCode(badgeCode)
}

func (s *CustomerService) Update(id uint, req models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	customer.FullName = req.FullName
	customer.Phone = req.Phone
	customer.Birthday = req.Birthday
	customer.Notes = req.Notes

	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Search(query string) ([]models.Customer, error) {
	return s.customerRepo.Search(query, 25)
}

// BadgeQR renders the customer's badge code as a printable QR PNG for the
// front-desk scanner.
func (s *CustomerService) BadgeQR(id uint, size int) ([]byte, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.qrService.GenerateBadge(customer.BadgeCode, size)
}

func (s *CustomerService) AddFamilyMember(customerID uint, req models.CreateFamilyMemberRequest) (*models.FamilyMember, error) {
	if _, err := s.customerRepo.GetByID(customerID); err != nil {
		return nil, err
	}

	member := &models.FamilyMember{
		CustomerID: customerID,
		FullName:   req.FullName,
		Birthday:   req.Birthday,
	}

	if err := s.customerRepo.CreateFamilyMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *CustomerService) GetFamilyMembers(customerID uint) ([]models.FamilyMember, error) {
	return s.customerRepo.GetFamilyMembers(customerID)
}

// UploadWaiver stores a signed waiver PDF and remembers its key on the
// customer. Re-uploading replaces the reference but keeps the old object.
func (s *CustomerService) UploadWaiver(ctx context.Context, customerID uint, pdf []byte) error {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("waivers/%d/%s.pdf", customerID, uuid.NewString())
	if err := s.waivers.Upload(ctx, key, bytes.NewReader(pdf)); err != nil {
		return err
	}

	customer.WaiverKey = key
	return s.customerRepo.Update(customer)
}

func (s *CustomerService) GetWaiver(ctx context.Context, customerID uint) ([]byte, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer.WaiverKey == "" {
		return nil, ErrNoWaiverOnFile
	}
	return s.waivers.Download(ctx, customer.WaiverKey)
}
