package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/repository"
	"github.com/movella/studiopos-backend/internal/service"
	"github.com/movella/studiopos-backend/pkg/clock"
)

type CheckInHandler struct {
	checkInService  *service.CheckInService
	customerService *service.CustomerService
	checkInRepo     *repository.CheckInRepository
	clock           clock.Clock
}

func NewCheckInHandler(checkInService *service.CheckInService, customerService *service.CustomerService, checkInRepo *repository.CheckInRepository, clk clock.Clock) *CheckInHandler {
	return &CheckInHandler{
		checkInService:  checkInService,
		customerService: customerService,
		checkInRepo:     checkInRepo,
		clock:           clk,
	}
}

// CheckIn handles one check-in attempt from the desk, either from the search
// screen (customer/family member ID) or the QR scanner (badge code). A denial
// is a 200 with allowed=false; the desk shows the reason as-is.
func (h *CheckInHandler) CheckIn(c *fiber.Ctx) error {
	staffID, err := staffIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req models.CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	owner := models.OwnerRef{CustomerID: req.CustomerID, FamilyMemberID: req.FamilyMemberID}
	if req.BadgeCode != "" {
		customer, err := h.customerService.GetByBadgeCode(req.BadgeCode)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Unknown badge code"))
		}
		owner = models.OwnerRef{CustomerID: &customer.ID}
	}

	if err := owner.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	result, err := h.checkInService.AuthorizeCheckIn(owner, staffID, req.IsBirthdayCheckIn)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Check-in failed"))
	}

	return c.JSON(models.SuccessResponse(result, "Check-in processed"))
}

func (h *CheckInHandler) BirthdayEligibility(c *fiber.Ctx) error {
	owner, ok := ownerFromQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("customer_id or family_member_id is required"))
	}

	eligibility, err := h.checkInService.BirthdayEligibility(owner)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(eligibility, "Birthday eligibility retrieved"))
}

func (h *CheckInHandler) ListToday(c *fiber.Ctx) error {
	records, err := h.checkInRepo.ListByDate(h.clock.Today())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(records, "Today's check-ins retrieved"))
}

func (h *CheckInHandler) OwnerHistory(c *fiber.Ctx) error {
	owner, ok := ownerFromQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("customer_id or family_member_id is required"))
	}

	records, err := h.checkInRepo.ListForOwner(owner, 100)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(records, "Check-in history retrieved"))
}

func ownerFromQuery(c *fiber.Ctx) (models.OwnerRef, bool) {
	var owner models.OwnerRef
	if id := c.QueryInt("customer_id"); id > 0 {
		v := uint(id)
		owner.CustomerID = &v
	}
	if id := c.QueryInt("family_member_id"); id > 0 {
		v := uint(id)
		owner.FamilyMemberID = &v
	}
	return owner, owner.Validate() == nil
}
