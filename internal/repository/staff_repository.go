package repository

import (
	"github.com/movella/studiopos-backend/internal/models"
	"gorm.io/gorm"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) Create(staff *models.Staff) error {
	return r.db.Create(staff).Error
}

func (r *StaffRepository) GetByID(id uint) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.First(&staff, id).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *StaffRepository) GetByEmail(email string) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.Where("email = ?", email).First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *StaffRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Staff{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *StaffRepository) UpdatePassword(id uint, hashedPassword string) error {
	return r.db.Model(&models.Staff{}).Where("id = ?", id).
		Update("password", hashedPassword).Error
}
