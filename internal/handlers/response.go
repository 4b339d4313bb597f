package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errorResponse writes the uniform {error, message} body.
func errorResponse(c *fiber.Ctx, status int, title, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   title,
		"message": message,
	})
}

// validationMessages flattens validator errors into one message per field.
func validationMessages(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return messages
}

func invalidRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Invalid request",
		"message": "Validation failed",
		"errors":  validationMessages(err),
	})
}
