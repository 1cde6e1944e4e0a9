package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/identity"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// UsersHandler manages account registration against the identity provider.
// Login itself goes through the command pipeline so the attempt is recorded
// as events.
type UsersHandler struct {
	identity identity.Provider
}

// NewUsersHandler constructs handler.
func NewUsersHandler(provider identity.Provider) *UsersHandler {
	return &UsersHandler{identity: provider}
}

// Register POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	session, err := h.identity.SignUp(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return apperrors.NewDomainError("CONFLICT", "email already registered", fiber.StatusConflict, nil)
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}
