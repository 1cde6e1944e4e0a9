package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ValidateCommand checks a raw command against its per-type schema and
// returns it unchanged apart from defaulting a missing timestamp. Failures
// carry a field-level detail map; nothing here has side effects.
func ValidateCommand(cmd Command, now time.Time) (Command, error) {
	if cmd.Type == "" {
		return Command{}, apperrors.NewValidationError("command type required", map[string]any{
			"type": "missing",
		})
	}
	if !isKnownCommandType(cmd.Type) {
		return Command{}, apperrors.NewValidationError("unknown command type", map[string]any{
			"type": string(cmd.Type),
		})
	}
	if strings.TrimSpace(cmd.Email) == "" {
		return Command{}, apperrors.NewValidationError("email required", map[string]any{
			"email": "missing",
		})
	}

	missing := map[string]any{}
	switch cmd.Type {
	case CommandLoginAttempt:
		if cmd.Password == "" {
			missing["password"] = "missing"
		}
	case CommandRefreshToken:
		if cmd.RefreshToken == "" {
			missing["refreshToken"] = "missing"
		}
	case CommandCreateTicket:
		if cmd.TicketDetails == nil || strings.TrimSpace(cmd.TicketDetails.Subject) == "" {
			missing["ticketDetails.subject"] = "missing"
		}
	case CommandUpdateTicket:
		if cmd.TicketID == "" {
			missing["ticketId"] = "missing"
		}
		if len(cmd.Updates) == 0 {
			missing["updates"] = "missing"
		}
	case CommandAddComment:
		if cmd.TicketID == "" {
			missing["ticketId"] = "missing"
		}
		if strings.TrimSpace(cmd.Comment) == "" {
			missing["comment"] = "missing"
		}
	case CommandEscalateTicket:
		if cmd.TicketID == "" {
			missing["ticketId"] = "missing"
		}
	case CommandFetchDashboard:
		// email is the only requirement
	}
	if len(missing) > 0 {
		return Command{}, apperrors.NewValidationError("missing required fields", missing)
	}

	if cmd.Timestamp.IsZero() {
		cmd.Timestamp = now
	}
	return cmd, nil
}

func isKnownCommandType(t CommandType) bool {
	for _, known := range KnownCommandTypes {
		if known == t {
			return true
		}
	}
	return false
}
