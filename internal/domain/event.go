package domain

import "time"

// EventType enumerates persisted event tags.
type EventType string

const (
	EventLoginRequested        EventType = "LOGIN_REQUESTED"
	EventLoginSucceeded        EventType = "LOGIN_SUCCEEDED"
	EventLoginFailed           EventType = "LOGIN_FAILED"
	EventRefreshTokenValidated EventType = "REFRESH_TOKEN_VALIDATED"
	EventTokenRefreshed        EventType = "TOKEN_REFRESHED"
	EventInvalidRefreshToken   EventType = "INVALID_REFRESH_TOKEN"
	EventTicketCreated         EventType = "TICKET_CREATED"
	EventTicketUpdated         EventType = "TICKET_UPDATED"
	EventCommentAdded          EventType = "COMMENT_ADDED"
	EventTicketEscalated       EventType = "TICKET_ESCALATED"
	EventDashboardRequested    EventType = "DASHBOARD_REQUESTED"
	EventUnknownCommand        EventType = "UNKNOWN_COMMAND"
)

// Event is an immutable fact scoped to exactly one aggregate (Email). The
// Type tag determines which payload fields are set; everything else stays at
// its zero value and is dropped from JSON. Events are created once by
// Transition, persisted once, and thereafter only read.
type Event struct {
	Type      EventType `json:"type"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`

	// LOGIN_REQUESTED carries the credentials forward for the identity
	// provider; the transition itself performs no verification.
	Password string `json:"password,omitempty"`

	// LOGIN_SUCCEEDED
	UserID       string `json:"userId,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`

	// TOKEN_REFRESHED
	NewAccessToken  string `json:"newAccessToken,omitempty"`
	NewRefreshToken string `json:"newRefreshToken,omitempty"`

	// REFRESH_TOKEN_VALIDATED / INVALID_REFRESH_TOKEN: the token the caller
	// presented. The invalidated-token blacklist compares against this field.
	Token string `json:"token,omitempty"`

	// LOGIN_FAILED / INVALID_REFRESH_TOKEN
	Reason string `json:"reason,omitempty"`

	// Ticket events
	TicketID  string         `json:"ticketId,omitempty"`
	Details   *TicketDetails `json:"details,omitempty"`
	Updates   map[string]any `json:"updates,omitempty"`
	CommentID string         `json:"commentId,omitempty"`
	Comment   string         `json:"comment,omitempty"`

	// UNKNOWN_COMMAND keeps the rejected tag for diagnostics.
	OriginalCommand string `json:"originalCommand,omitempty"`
}
