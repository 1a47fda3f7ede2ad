package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/movella/studiopos-backend/internal/models"
	"github.com/movella/studiopos-backend/internal/service"
	"github.com/movella/studiopos-backend/pkg/clock"
)

type ReportHandler struct {
	reportService *service.ReportService
	clock         clock.Clock
}

func NewReportHandler(reportService *service.ReportService, clk clock.Clock) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		clock:         clk,
	}
}

// dateRange pulls from/to query params, defaulting to the last 30 days.
func (h *ReportHandler) dateRange(c *fiber.Ctx) (string, string) {
	to := c.Query("to", h.clock.Today())
	from := c.Query("from")
	if from == "" {
		from = h.clock.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}
	return from, to
}

func (h *ReportHandler) Revenue(c *fiber.Ctx) error {
	from, to := h.dateRange(c)

	summary, err := h.reportService.Revenue(from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(summary, "Revenue report retrieved"))
}

func (h *ReportHandler) Attendance(c *fiber.Ctx) error {
	from, to := h.dateRange(c)

	report, err := h.reportService.Attendance(from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(report, "Attendance report retrieved"))
}

func (h *ReportHandler) Membership(c *fiber.Ctx) error {
	summary, err := h.reportService.Membership()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(summary, "Membership summary retrieved"))
}
