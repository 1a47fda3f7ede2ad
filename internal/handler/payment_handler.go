package handler

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/service"
	"github.com/movella/studiopos-backend/pkg/utils"
	"github.com/stripe/stripe-go/v74/webhook"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	validator      *utils.Validator
}

func NewPaymentHandler(paymentService *service.PaymentService, validator *utils.Validator) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validator:      validator,
	}
}

func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	cardTypeID, err := strconv.ParseUint(c.Params("cardTypeId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid card type ID"))
	}

	var req models.CreateCheckoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	session, err := h.paymentService.CreateCheckoutSession(uint(cardTypeID), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(session, "Checkout session created"))
}

func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(fmt.Sprintf("Webhook error: %v", err)))
	}

	if err := h.paymentService.HandleStripeWebhook(&event); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PaymentHandler) GetPurchaseHistory(c *fiber.Ctx) error {
	purchases, err := h.paymentService.GetPurchaseHistory(200)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(purchases, "Purchase history retrieved"))
}

func (h *PaymentHandler) GetCustomerPurchaseHistory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid customer ID"))
	}

	purchases, err := h.paymentService.GetCustomerPurchaseHistory(uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(purchases, "Purchase history retrieved"))
}
