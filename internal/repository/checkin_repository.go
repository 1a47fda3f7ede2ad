package repository

import (
	"github.com/movella/studiopos-backend/internal/models"
	"gorm.io/gorm"
)

type CheckInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Create appends a check-in record that draws no balance: birthday freebies
// and subscription visits. Punch-card records go through
// CardRepository.DecrementAndRecord so they stay atomic with the decrement.
func (r *CheckInRepository) Create(record *models.CheckInRecord) error {
	return r.db.Create(record).Error
}

func (r *CheckInRepository) CountBirthdayOnDate(owner models.OwnerRef, date string) (int64, error) {
	var count int64
	err := r.db.Model(&models.CheckInRecord{}).
		Scopes(ownerScope(owner)).
		Where("is_birthday_check_in = ? AND check_in_date = ?", true, date).
		Count(&count).Error
	return count, err
}

func (r *CheckInRepository) ListForOwner(owner models.OwnerRef, limit int) ([]models.CheckInRecord, error) {
	var records []models.CheckInRecord
	err := r.db.Scopes(ownerScope(owner)).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *CheckInRepository) ListByDate(date string) ([]models.CheckInRecord, error) {
	var records []models.CheckInRecord
	err := r.db.Where("check_in_date = ?", date).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// AttendanceBetween aggregates check-ins per day for the admin report,
// splitting punch-card, subscription and birthday visits.
func (r *CheckInRepository) AttendanceBetween(from, to string) ([]models.AttendanceDay, error) {
	var days []models.AttendanceDay
	err := r.db.Model(&models.CheckInRecord{}).
		Select(`check_in_date AS date,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_birthday_check_in) AS birthday_free,
			COUNT(*) FILTER (WHERE card_types.category = ?) AS punch_card,
			COUNT(*) FILTER (WHERE card_types.category = ?) AS subscription`,
			models.CardCategoryPunchCard, models.CardCategorySubscription).
		Joins("LEFT JOIN card_instances ON card_instances.id = check_in_records.card_instance_id").
		Joins("LEFT JOIN card_types ON card_types.id = card_instances.card_type_id").
		Where("check_in_date BETWEEN ? AND ?", from, to).
		Group("check_in_date").
		Order("check_in_date ASC").
		Scan(&days).Error
	return days, err
}

func (r *CheckInRepository) CountActiveCards(today string) (int64, int64, error) {
	var active, subscriptions int64

	err := r.db.Model(&models.CardInstance{}).
		Where("status = ? AND expiration_date >= ?", models.CardStatusActive, today).
		Count(&active).Error
	if err != nil {
		return 0, 0, err
	}

	err = r.db.Model(&models.CardInstance{}).
		Where("status = ? AND expiration_date >= ? AND total_classes = 0",
			models.CardStatusActive, today).
		Count(&subscriptions).Error
	return active, subscriptions, err
}
