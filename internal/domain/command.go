package domain

import "time"

// CommandType enumerates supported command tags.
type CommandType string

const (
	CommandLoginAttempt   CommandType = "LOGIN_ATTEMPT"
	CommandRefreshToken   CommandType = "REFRESH_TOKEN"
	CommandCreateTicket   CommandType = "CREATE_TICKET"
	CommandUpdateTicket   CommandType = "UPDATE_TICKET"
	CommandAddComment     CommandType = "ADD_COMMENT"
	CommandEscalateTicket CommandType = "ESCALATE_TICKET"
	CommandFetchDashboard CommandType = "FETCH_DASHBOARD"
)

// KnownCommandTypes lists every accepted command tag.
var KnownCommandTypes = []CommandType{
	CommandLoginAttempt,
	CommandRefreshToken,
	CommandCreateTicket,
	CommandUpdateTicket,
	CommandAddComment,
	CommandEscalateTicket,
	CommandFetchDashboard,
}

// TicketDetails is the caller-provided ticket content.
type TicketDetails struct {
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
}

// Command is a caller-submitted intent. Commands are transient: they are
// consumed once by Transition and never persisted. Email identifies the
// aggregate and is mandatory on every command type.
type Command struct {
	Type      CommandType `json:"type"`
	Email     string      `json:"email"`
	Timestamp time.Time   `json:"timestamp,omitempty"`

	Password      string         `json:"password,omitempty"`
	RefreshToken  string         `json:"refreshToken,omitempty"`
	TicketID      string         `json:"ticketId,omitempty"`
	Comment       string         `json:"comment,omitempty"`
	TicketDetails *TicketDetails `json:"ticketDetails,omitempty"`
	Updates       map[string]any `json:"updates,omitempty"`
}
