package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/crm"
)

// CRMHandler serves the proxied read-only CRM endpoints.
type CRMHandler struct {
	client *crm.Client
}

// NewCRMHandler constructs handler.
func NewCRMHandler(client *crm.Client) *CRMHandler {
	return &CRMHandler{client: client}
}

// Reports GET /crm/reports.
func (h *CRMHandler) Reports(c *fiber.Ctx) error {
	body, err := h.client.Reports(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// Tickets GET /crm/tickets.
func (h *CRMHandler) Tickets(c *fiber.Ctx) error {
	body, err := h.client.Tickets(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
