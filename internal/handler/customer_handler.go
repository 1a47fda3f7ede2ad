package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/service"
	"github.com/movella/studiopos-backend/pkg/utils"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	validator       *utils.Validator
}

func NewCustomerHandler(customerService *service.CustomerService, validator *utils.Validator) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		validator:       validator,
	}
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req models.CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	customer, err := h.customerService.Create(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(customer, "Customer created"))
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid customer ID"))
	}

	customer, err := h.customerService.GetByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Customer not found"))
	}

	return c.JSON(models.SuccessResponse(customer, "Customer retrieved"))
}

func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid customer ID"))
	}

	var req models.UpdateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	customer, err := h.customerService.Update(uint(id), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(customer, "Customer updated"))
}

// Search backs the check-in desk lookup box.
func (h *CustomerHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Query parameter q is required"))
	}

	customers, err := h.customerService.Search(query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(customers, "Customers retrieved"))
}

// BadgeQR serves the customer's badge as a PNG for printing.
func (h *CustomerHandler) BadgeQR(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid customer ID"))
	}

	size := c.QueryInt("size", 256)
	png, err := h.customerService.BadgeQR(uint(id), size)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Customer not found"))
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

func (h *CustomerHandler) AddFamilyMember(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid customer ID"))
	}

	var req models.CreateFamilyMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	member, err := h.customerService.AddFamilyMember(uint(id), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(member, "Family member added"))
}

func (h *CustomerHandler) GetFamilyMembers(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid customer ID"))
	}

	members, err := h.customerService.GetFamilyMembers(uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(members, "Family members retrieved"))
}

func (h *CustomerHandler) UploadWaiver(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid customer ID"))
	}

	file, err := c.FormFile("waiver")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Waiver file is required"))
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Could not read waiver file"))
	}
	defer src.Close()

	pdf, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Could not read waiver file"))
	}

	if err := h.customerService.UploadWaiver(c.Context(), uint(id), pdf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(nil, "Waiver uploaded"))
}

func (h *CustomerHandler) GetWaiver(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid customer ID"))
	}

	pdf, err := h.customerService.GetWaiver(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNoWaiverOnFile) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	c.Set("Content-Type", "application/pdf")
	return c.Send(pdf)
}
