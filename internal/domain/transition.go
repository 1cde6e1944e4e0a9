package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Reasons attached to INVALID_REFRESH_TOKEN events.
const (
	ReasonTokenNotFound    = "Token not found"
	ReasonTokenInvalidated = "Token has been invalidated"
)

// idNamespace seeds deterministic v5 ids so Transition stays a pure function:
// the same command, history and timestamp always mint the same identifiers.
var idNamespace = uuid.MustParse("6b7440b2-81f1-4c30-9532-3a6f81a4a41d")

// Transition is the pure command-to-event decision function. It is total:
// every input yields an event, with unrecognized command types recorded as
// UNKNOWN_COMMAND rather than failing. It performs no I/O and no credential
// verification; those belong to the orchestrator and its collaborators.
func Transition(cmd Command, history []Event, now time.Time) Event {
	base := Event{Email: cmd.Email, Timestamp: now}

	switch cmd.Type {
	case CommandLoginAttempt:
		base.Type = EventLoginRequested
		base.Password = cmd.Password
		return base

	case CommandRefreshToken:
		return validateRefreshToken(cmd, history, now)

	case CommandCreateTicket:
		base.Type = EventTicketCreated
		base.TicketID = mintID("ticket", cmd.Email, now, "")
		base.Details = cmd.TicketDetails
		return base

	case CommandUpdateTicket:
		base.Type = EventTicketUpdated
		base.TicketID = cmd.TicketID
		base.Updates = cmd.Updates
		return base

	case CommandAddComment:
		base.Type = EventCommentAdded
		base.TicketID = cmd.TicketID
		base.CommentID = mintID("comment", cmd.Email, now, cmd.TicketID+"|"+cmd.Comment)
		base.Comment = cmd.Comment
		return base

	case CommandEscalateTicket:
		base.Type = EventTicketEscalated
		base.TicketID = cmd.TicketID
		return base

	case CommandFetchDashboard:
		base.Type = EventDashboardRequested
		return base

	default:
		base.Type = EventUnknownCommand
		base.OriginalCommand = string(cmd.Type)
		return base
	}
}

// validateRefreshToken decides token provenance from the append-only log:
// was this token ever issued to this aggregate, and never revoked. The
// cryptographic signature/expiry check is deliberately left to the caller so
// this function stays pure and testable without a crypto dependency.
func validateRefreshToken(cmd Command, history []Event, now time.Time) Event {
	invalid := func(reason string) Event {
		return Event{
			Type:      EventInvalidRefreshToken,
			Email:     cmd.Email,
			Timestamp: now,
			Token:     cmd.RefreshToken,
			Reason:    reason,
		}
	}

	if len(history) == 0 {
		return invalid(ReasonTokenNotFound)
	}

	relevant := make([]Event, 0, len(history))
	for _, event := range history {
		if event.Email != cmd.Email {
			continue
		}
		switch event.Type {
		case EventLoginSucceeded, EventTokenRefreshed, EventInvalidRefreshToken:
			relevant = append(relevant, event)
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].Timestamp.After(relevant[j].Timestamp)
	})

	// Revocation is a permanent blacklist: any historic invalidation of this
	// exact token wins, regardless of how recently a matching issue occurred.
	for _, event := range relevant {
		if event.Type == EventInvalidRefreshToken && event.Token == cmd.RefreshToken {
			return invalid(ReasonTokenInvalidated)
		}
	}

	for _, event := range relevant {
		issued := ""
		switch event.Type {
		case EventLoginSucceeded:
			issued = event.RefreshToken
		case EventTokenRefreshed:
			issued = event.NewRefreshToken
		default:
			continue
		}
		if issued != "" && issued == cmd.RefreshToken {
			return Event{
				Type:      EventRefreshTokenValidated,
				Email:     cmd.Email,
				Timestamp: now,
				Token:     cmd.RefreshToken,
			}
		}
	}

	return invalid(ReasonTokenNotFound)
}

func mintID(kind, email string, now time.Time, extra string) string {
	name := fmt.Sprintf("%s|%s|%d|%s", kind, email, now.UnixNano(), extra)
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}
