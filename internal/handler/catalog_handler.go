package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/service"
	"github.com/movella/studiopos-backend/pkg/utils"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	validator      *utils.Validator
}

func NewCatalogHandler(catalogService *service.CatalogService, validator *utils.Validator) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator,
	}
}

func (h *CatalogHandler) GetActiveCardTypes(c *fiber.Ctx) error {
	cardTypes, err := h.catalogService.GetActiveCardTypes()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(cardTypes, "Card types retrieved"))
}

func (h *CatalogHandler) GetCardType(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid card type ID"))
	}

	cardType, err := h.catalogService.GetCardTypeByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Card type not found"))
	}

	return c.JSON(models.SuccessResponse(cardType, "Card type retrieved"))
}

func (h *CatalogHandler) CreateCardType(c *fiber.Ctx) error {
	var req models.CreateCardTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	cardType, err := h.catalogService.CreateCardType(req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(cardType, "Card type created"))
}

func (h *CatalogHandler) UpdateCardType(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid card type ID"))
	}

	var req models.UpdateCardTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	cardType, err := h.catalogService.UpdateCardType(uint(id), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(cardType, "Card type updated"))
}

func (h *CatalogHandler) DeactivateCardType(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid card type ID"))
	}

	if err := h.catalogService.DeactivateCardType(uint(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(nil, "Card type deactivated"))
}
