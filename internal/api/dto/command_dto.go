package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/identity"
)

// CommandRequest is the wire shape of an inbound command.
type CommandRequest struct {
	Type          string                `json:"type"`
	Email         string                `json:"email"`
	Timestamp     *time.Time            `json:"timestamp,omitempty"`
	Password      string                `json:"password,omitempty"`
	RefreshToken  string                `json:"refreshToken,omitempty"`
	TicketID      string                `json:"ticketId,omitempty"`
	Comment       string                `json:"comment,omitempty"`
	TicketDetails *TicketDetailsPayload `json:"ticketDetails,omitempty"`
	Updates       map[string]any        `json:"updates,omitempty"`
}

// TicketDetailsPayload carries ticket content on CREATE_TICKET.
type TicketDetailsPayload struct {
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
}

// ToCommand maps the request onto the domain command.
func (r CommandRequest) ToCommand() domain.Command {
	cmd := domain.Command{
		Type:         domain.CommandType(r.Type),
		Email:        r.Email,
		Password:     r.Password,
		RefreshToken: r.RefreshToken,
		TicketID:     r.TicketID,
		Comment:      r.Comment,
		Updates:      r.Updates,
	}
	if r.Timestamp != nil {
		cmd.Timestamp = *r.Timestamp
	}
	if r.TicketDetails != nil {
		cmd.TicketDetails = &domain.TicketDetails{
			Subject:     r.TicketDetails.Subject,
			Description: r.TicketDetails.Description,
		}
	}
	return cmd
}

// SessionResponse is the token pair returned on login and refresh.
type SessionResponse struct {
	UserID           string    `json:"userId"`
	Email            string    `json:"email"`
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// CommandResponse is shaped from the final persisted event.
type CommandResponse struct {
	Event   domain.Event     `json:"event"`
	Session *SessionResponse `json:"session,omitempty"`
}

// NewSessionResponse maps an identity session onto the wire shape.
func NewSessionResponse(session *identity.Session) *SessionResponse {
	if session == nil {
		return nil
	}
	return &SessionResponse{
		UserID:           session.UserID,
		Email:            session.Email,
		AccessToken:      session.AccessToken,
		AccessExpiresAt:  session.AccessExpiresAt,
		RefreshToken:     session.RefreshToken,
		RefreshExpiresAt: session.RefreshExpiresAt,
	}
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
