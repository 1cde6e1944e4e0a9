package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CommandsHandler exposes the command pipeline.
type CommandsHandler struct {
	pipeline *service.PipelineService
}

// NewCommandsHandler constructs handler.
func NewCommandsHandler(pipeline *service.PipelineService) *CommandsHandler {
	return &CommandsHandler{pipeline: pipeline}
}

// Submit POST /commands.
func (h *CommandsHandler) Submit(c *fiber.Ctx) error {
	var req dto.CommandRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.pipeline.SubmitCommand(c.UserContext(), req.ToCommand())
	if err != nil {
		return err
	}

	event := result.Event
	// credentials never leave the store
	event.Password = ""

	response := dto.CommandResponse{
		Event:   event,
		Session: dto.NewSessionResponse(result.Session),
	}
	return c.Status(statusForEvent(event.Type)).JSON(fiber.Map{"data": response})
}

func statusForEvent(eventType domain.EventType) int {
	switch eventType {
	case domain.EventTicketCreated:
		return fiber.StatusCreated
	case domain.EventLoginFailed, domain.EventInvalidRefreshToken:
		return fiber.StatusUnauthorized
	case domain.EventUnknownCommand:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusOK
	}
}
