package domain

import "time"

// Ticket status and priority values as they appear in reconstructed state.
const (
	TicketStatusOpen   = "Open"
	TicketPriorityHigh = "High"
)

// Comment is a single ticket comment.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Ticket is the reconstructed view of one support ticket.
type Ticket struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Details     *TicketDetails `json:"details,omitempty"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority,omitempty"`
	Comments    []Comment      `json:"comments"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
	EscalatedAt *time.Time     `json:"escalatedAt,omitempty"`
}

// UserView is the reconstructed authenticated-user snapshot.
type UserView struct {
	Email        string    `json:"email"`
	LastLogin    time.Time `json:"lastLogin"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

// TicketStats aggregates ticket counts for the dashboard.
type TicketStats struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Escalated int `json:"escalated"`
}

// Dashboard is the derived reporting section of the state.
type Dashboard struct {
	RecentTickets []Ticket    `json:"recentTickets"`
	TicketStats   TicketStats `json:"ticketStats"`
}

// State is derived, never stored: it is produced fresh by folding an
// aggregate's event history from InitialState.
type State struct {
	User      *UserView `json:"user"`
	Tickets   []Ticket  `json:"tickets"`
	Dashboard Dashboard `json:"dashboard"`
}

const recentTicketLimit = 5

// InitialState is the fixed fold seed.
func InitialState() State {
	return State{
		User:    nil,
		Tickets: []Ticket{},
		Dashboard: Dashboard{
			RecentTickets: []Ticket{},
			TicketStats:   TicketStats{},
		},
	}
}

// ApplyEvent folds one event into state. It never mutates its input: events
// that change state produce a fresh value, events that carry no state change
// return the state argument untouched. Unknown event types are ignored so
// replay stays forward compatible.
func ApplyEvent(state State, event Event) State {
	switch event.Type {
	case EventLoginSucceeded:
		next := state
		next.User = &UserView{
			Email:        event.Email,
			LastLogin:    event.Timestamp,
			AccessToken:  event.AccessToken,
			RefreshToken: event.RefreshToken,
		}
		return next

	case EventTokenRefreshed:
		// A refresh against a user that never logged in is ignored: replay
		// must not invent a login that never happened.
		if state.User == nil {
			return state
		}
		user := *state.User
		user.AccessToken = event.NewAccessToken
		user.RefreshToken = event.NewRefreshToken
		next := state
		next.User = &user
		return next

	case EventTicketCreated:
		ticket := Ticket{
			ID:        event.TicketID,
			Email:     event.Email,
			Details:   event.Details,
			Status:    TicketStatusOpen,
			Comments:  []Comment{},
			CreatedAt: event.Timestamp,
		}
		next := state
		next.Tickets = append(cloneTickets(state.Tickets), ticket)
		return withDashboard(next)

	case EventTicketUpdated:
		return updateTicket(state, event.TicketID, func(t *Ticket) {
			mergeUpdates(t, event.Updates)
			at := event.Timestamp
			t.UpdatedAt = &at
		})

	case EventCommentAdded:
		return updateTicket(state, event.TicketID, func(t *Ticket) {
			comment := Comment{
				ID:        event.CommentID,
				Text:      event.Comment,
				Timestamp: event.Timestamp,
			}
			t.Comments = append(append([]Comment{}, t.Comments...), comment)
		})

	case EventTicketEscalated:
		return updateTicket(state, event.TicketID, func(t *Ticket) {
			t.Priority = TicketPriorityHigh
			at := event.Timestamp
			t.EscalatedAt = &at
		})

	default:
		return state
	}
}

// ReduceHistory folds an ordered history into a snapshot.
func ReduceHistory(history []Event) State {
	state := InitialState()
	for _, event := range history {
		state = ApplyEvent(state, event)
	}
	return state
}

// updateTicket rebuilds the ticket slice with mutate applied to the matching
// ticket. An unmatched id is a no-op and returns state untouched.
func updateTicket(state State, ticketID string, mutate func(*Ticket)) State {
	index := -1
	for i := range state.Tickets {
		if state.Tickets[i].ID == ticketID {
			index = i
			break
		}
	}
	if index < 0 {
		return state
	}

	tickets := cloneTickets(state.Tickets)
	mutate(&tickets[index])

	next := state
	next.Tickets = tickets
	return withDashboard(next)
}

// mergeUpdates shallow-merges a partial-update payload into the ticket.
// Unknown keys are ignored.
func mergeUpdates(t *Ticket, updates map[string]any) {
	details := TicketDetails{}
	if t.Details != nil {
		details = *t.Details
	}
	detailsChanged := false

	for key, value := range updates {
		str, ok := value.(string)
		if !ok {
			continue
		}
		switch key {
		case "subject":
			details.Subject = str
			detailsChanged = true
		case "description":
			details.Description = str
			detailsChanged = true
		case "status":
			t.Status = str
		case "priority":
			t.Priority = str
		}
	}
	if detailsChanged {
		t.Details = &details
	}
}

func cloneTickets(tickets []Ticket) []Ticket {
	return append([]Ticket{}, tickets...)
}

// withDashboard recomputes the derived dashboard section after a ticket
// change so state queries never need a second pass.
func withDashboard(state State) State {
	stats := TicketStats{Total: len(state.Tickets)}
	for i := range state.Tickets {
		if state.Tickets[i].Status == TicketStatusOpen {
			stats.Open++
		}
		if state.Tickets[i].EscalatedAt != nil {
			stats.Escalated++
		}
	}

	start := len(state.Tickets) - recentTicketLimit
	if start < 0 {
		start = 0
	}
	recent := append([]Ticket{}, state.Tickets[start:]...)

	state.Dashboard = Dashboard{
		RecentTickets: recent,
		TicketStats:   stats,
	}
	return state
}
