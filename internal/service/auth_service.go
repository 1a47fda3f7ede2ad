package service

import (
	"errors"

	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/repository"
	"github.com/movella/studiopos-backend/pkg/bcrypt"
	jwtPkg "github.com/movella/studiopos-backend/pkg/jwt"
)

type AuthService struct {
	staffRepo *repository.StaffRepository
}

func NewAuthService(staffRepo *repository.StaffRepository) *AuthService {
	return &AuthService{
		staffRepo: staffRepo,
	}
}

func (s *AuthService) Register(req models.RegisterRequest) (*models.AuthResponse, error) {
	exists, err := s.staffRepo.EmailExists(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := models.RoleStaff
	if req.Role == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}

	staff := &models.Staff{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     role,
	}

	if err := s.staffRepo.Create(staff); err != nil {
		return nil, err
	}

	token, err := jwtPkg.GenerateToken(staff.Email, staff.ID, string(staff.Role))
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		Staff: *staff,
	}, nil
}

func (s *AuthService) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	staff, err := s.staffRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.ComparePassword(staff.Password, req.Password); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token, err := jwtPkg.GenerateToken(staff.Email, staff.ID, string(staff.Role))
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		Staff: *staff,
	}, nil
}

func (s *AuthService) ChangePassword(staffID uint, req models.ChangePasswordRequest) error {
	staff, err := s.staffRepo.GetByID(staffID)
	if err != nil {
		return err
	}

	if err := bcrypt.ComparePassword(staff.Password, req.CurrentPassword); err != nil {
		return errors.New("current password is incorrect")
	}

	hashedPassword, err := bcrypt.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.staffRepo.UpdatePassword(staff.ID, hashedPassword)
}
