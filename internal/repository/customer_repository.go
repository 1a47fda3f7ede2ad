package repository

import (
	"github.com/movella/studiopos-backend/internal/models"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

func (r *CustomerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) GetByBadgeCode(badgeCode string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("badge_code = ?", badgeCode).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Customer{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *CustomerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

// Search matches name, email or phone for the check-in desk lookup.
func (r *CustomerRepository) Search(query string, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	pattern := "%" + query + "%"
	err := r.db.
		Where("full_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", pattern, pattern, pattern).
		Order("full_name ASC").
		Limit(limit).
		Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Customer{}).Count(&count).Error
	return count, err
}

func (r *CustomerRepository) CreateFamilyMember(member *models.FamilyMember) error {
	return r.db.Create(member).Error
}

func (r *CustomerRepository) GetFamilyMemberByID(id uint) (*models.FamilyMember, error) {
	var member models.FamilyMember
	err := r.db.First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *CustomerRepository) GetFamilyMembers(customerID uint) ([]models.FamilyMember, error) {
	var members []models.FamilyMember
	err := r.db.Where("customer_id = ?", customerID).Find(&members).Error
	return members, err
}
