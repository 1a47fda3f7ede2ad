package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var errNotAuthenticated = errors.New("not authenticated")

func staffIDFromCtx(c *fiber.Ctx) (uint, error) {
	staffID, ok := c.Locals("staffID").(uint)
	if !ok {
		return 0, errNotAuthenticated
	}
	return staffID, nil
}
