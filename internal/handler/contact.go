package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/irkinnovations/portfolio/internal/domain"
)

// ContactSubmitter forwards contact form submissions.
type ContactSubmitter interface {
	Submit(ctx context.Context, msg domain.ContactMessage) error
}

// ContactHandler handles the public contact form.
type ContactHandler struct {
	contact ContactSubmitter
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contact ContactSubmitter) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit relays a contact form submission.
func (h *ContactHandler) Submit(c echo.Context) error {
	var msg domain.ContactMessage
	if err := c.Bind(&msg); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}

	if err := h.contact.Submit(c.Request().Context(), msg); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Message sent successfully!"})
}
