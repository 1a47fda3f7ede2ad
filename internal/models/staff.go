package models

import "time"

type StaffRole string

const (
	RoleStaff StaffRole = "staff"
	RoleAdmin StaffRole = "admin"
)

// Staff is a front-desk or admin account. Customers never log in; all
// authenticated requests are staff acting on a customer's behalf.
type Staff struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FullName  string    `json:"full_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      StaffRole `json:"role" gorm:"type:varchar(16);not null;default:'staff'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
