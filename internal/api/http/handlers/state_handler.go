package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// StateHandler serves reconstructed aggregate snapshots.
type StateHandler struct {
	pipeline *service.PipelineService
}

// NewStateHandler constructs handler.
func NewStateHandler(pipeline *service.PipelineService) *StateHandler {
	return &StateHandler{pipeline: pipeline}
}

// GetState GET /state. The aggregate key is the caller's own email; history
// fetch is the scoping boundary, so no further filtering happens here.
func (h *StateHandler) GetState(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	state, err := h.pipeline.GetState(c.UserContext(), principal.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": state})
}

// GetDashboard GET /dashboard returns only the derived dashboard section.
func (h *StateHandler) GetDashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	state, err := h.pipeline.GetState(c.UserContext(), principal.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": state.Dashboard})
}
