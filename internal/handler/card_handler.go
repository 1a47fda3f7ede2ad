package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/service"
	"github.com/movella/studiopos-backend/pkg/utils"
)

type CardHandler struct {
	cardService *service.CardService
	validator   *utils.Validator
}

func NewCardHandler(cardService *service.CardService, validator *utils.Validator) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		validator:   validator,
	}
}

// IssueAdminPass creates a punch card for cash or comp, bypassing the online
// payment flow. Admin only; validation failures come back as 400s with the
// reason spelled out.
func (h *CardHandler) IssueAdminPass(c *fiber.Ctx) error {
	var req models.IssueAdminPassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	card, err := h.cardService.IssueAdminPass(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidClassCount) ||
			errors.Is(err, service.ErrExpirationNotFuture) ||
			errors.Is(err, models.ErrAmbiguousOwner) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(card, "Pass issued"))
}

func (h *CardHandler) ListOwnerCards(c *fiber.Ctx) error {
	owner, ok := ownerFromQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("customer_id or family_member_id is required"))
	}

	cards, err := h.cardService.ListOwnerCards(owner)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(cards, "Cards retrieved"))
}
