package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitialState(t *testing.T) {
	state := InitialState()

	require.Nil(t, state.User)
	require.Empty(t, state.Tickets)
	require.Empty(t, state.Dashboard.RecentTickets)
	require.Equal(t, TicketStats{}, state.Dashboard.TicketStats)
}

func TestApplyLoginSucceededReplacesUser(t *testing.T) {
	state := InitialState()
	state.User = &UserView{Email: "old@x.com", AccessToken: "stale"}

	next := ApplyEvent(state, Event{
		Type:         EventLoginSucceeded,
		Email:        "a@x.com",
		Timestamp:    testNow,
		AccessToken:  "access",
		RefreshToken: "refresh",
	})

	require.Equal(t, "a@x.com", next.User.Email)
	require.Equal(t, testNow, next.User.LastLogin)
	require.Equal(t, "access", next.User.AccessToken)
	require.Equal(t, "refresh", next.User.RefreshToken)
}

func TestApplyTokenRefreshedMergesTokens(t *testing.T) {
	state := ApplyEvent(InitialState(), Event{
		Type:         EventLoginSucceeded,
		Email:        "a@x.com",
		Timestamp:    testNow,
		AccessToken:  "access",
		RefreshToken: "refresh",
	})

	next := ApplyEvent(state, Event{
		Type:            EventTokenRefreshed,
		Email:           "a@x.com",
		Timestamp:       testNow.Add(time.Hour),
		NewAccessToken:  "access2",
		NewRefreshToken: "refresh2",
	})

	require.Equal(t, "access2", next.User.AccessToken)
	require.Equal(t, "refresh2", next.User.RefreshToken)
	require.Equal(t, testNow, next.User.LastLogin)
	// original untouched
	require.Equal(t, "access", state.User.AccessToken)
}

func TestApplyTokenRefreshedWithoutUserIsIgnored(t *testing.T) {
	state := InitialState()

	next := ApplyEvent(state, Event{
		Type:            EventTokenRefreshed,
		Email:           "a@x.com",
		Timestamp:       testNow,
		NewAccessToken:  "access",
		NewRefreshToken: "refresh",
	})

	require.Nil(t, next.User)
}

func TestApplyTicketCreated(t *testing.T) {
	state := ApplyEvent(InitialState(), Event{
		Type:      EventTicketCreated,
		Email:     "a@x.com",
		Timestamp: testNow,
		TicketID:  "T1",
		Details:   &TicketDetails{Subject: "S", Description: "D"},
	})

	require.Len(t, state.Tickets, 1)
	ticket := state.Tickets[0]
	require.Equal(t, "T1", ticket.ID)
	require.Equal(t, TicketStatusOpen, ticket.Status)
	require.NotNil(t, ticket.Comments)
	require.Empty(t, ticket.Comments)
	require.Equal(t, "S", ticket.Details.Subject)
	require.Equal(t, 1, state.Dashboard.TicketStats.Total)
	require.Equal(t, 1, state.Dashboard.TicketStats.Open)
}

func TestApplyTicketUpdatedMergesFields(t *testing.T) {
	created := ApplyEvent(InitialState(), Event{
		Type: EventTicketCreated, Email: "a@x.com", Timestamp: testNow,
		TicketID: "T1", Details: &TicketDetails{Subject: "S"},
	})

	updatedAt := testNow.Add(time.Hour)
	next := ApplyEvent(created, Event{
		Type: EventTicketUpdated, Email: "a@x.com", Timestamp: updatedAt,
		TicketID: "T1", Updates: map[string]any{"status": "Resolved", "subject": "S2"},
	})

	require.Equal(t, "Resolved", next.Tickets[0].Status)
	require.Equal(t, "S2", next.Tickets[0].Details.Subject)
	require.Equal(t, updatedAt, *next.Tickets[0].UpdatedAt)
	// prior state keeps its values
	require.Equal(t, TicketStatusOpen, created.Tickets[0].Status)
	require.Equal(t, "S", created.Tickets[0].Details.Subject)
}

func TestApplyCommentAdded(t *testing.T) {
	history := []Event{
		{Type: EventTicketCreated, Email: "a@x.com", Timestamp: testNow, TicketID: "T1", Details: &TicketDetails{Subject: "S"}},
		{Type: EventCommentAdded, Email: "a@x.com", Timestamp: testNow.Add(time.Minute), TicketID: "T1", CommentID: "C1", Comment: "hi"},
	}

	state := ReduceHistory(history)

	require.Len(t, state.Tickets, 1)
	require.Len(t, state.Tickets[0].Comments, 1)
	require.Equal(t, "hi", state.Tickets[0].Comments[0].Text)
	require.Equal(t, "C1", state.Tickets[0].Comments[0].ID)
}

func TestApplyTicketEscalated(t *testing.T) {
	history := []Event{
		{Type: EventTicketCreated, Email: "a@x.com", Timestamp: testNow, TicketID: "T1", Details: &TicketDetails{Subject: "S"}},
		{Type: EventTicketEscalated, Email: "a@x.com", Timestamp: testNow.Add(time.Minute), TicketID: "T1"},
	}

	state := ReduceHistory(history)

	require.Equal(t, TicketPriorityHigh, state.Tickets[0].Priority)
	require.NotNil(t, state.Tickets[0].EscalatedAt)
	require.Equal(t, 1, state.Dashboard.TicketStats.Escalated)
}

func TestApplyUnmatchedTicketIDIsNoOp(t *testing.T) {
	created := ApplyEvent(InitialState(), Event{
		Type: EventTicketCreated, Email: "a@x.com", Timestamp: testNow,
		TicketID: "T1", Details: &TicketDetails{Subject: "S"},
	})

	for _, event := range []Event{
		{Type: EventTicketUpdated, TicketID: "missing", Updates: map[string]any{"status": "X"}},
		{Type: EventCommentAdded, TicketID: "missing", Comment: "hi"},
		{Type: EventTicketEscalated, TicketID: "missing"},
	} {
		next := ApplyEvent(created, event)
		require.Equal(t, created, next)
	}
}

func TestApplyNoOpEventsReturnSameState(t *testing.T) {
	state := ApplyEvent(InitialState(), Event{
		Type: EventTicketCreated, Email: "a@x.com", Timestamp: testNow,
		TicketID: "T1", Details: &TicketDetails{Subject: "S"},
	})

	for _, eventType := range []EventType{
		EventLoginRequested,
		EventRefreshTokenValidated,
		EventInvalidRefreshToken,
		EventDashboardRequested,
		EventUnknownCommand,
		EventType("SOME_FUTURE_EVENT"),
	} {
		next := ApplyEvent(state, Event{Type: eventType, Email: "a@x.com", Timestamp: testNow})
		require.Equal(t, state, next)
		// the ticket slice is the very same backing array, not a copy
		require.Same(t, &state.Tickets[0], &next.Tickets[0])
	}
}

func TestReplayIsMonotonic(t *testing.T) {
	events := []Event{
		{Type: EventTicketCreated, Email: "a@x.com", Timestamp: testNow, TicketID: "T1", Details: &TicketDetails{Subject: "S"}},
		{Type: EventCommentAdded, Email: "a@x.com", Timestamp: testNow.Add(time.Minute), TicketID: "T1", CommentID: "C1", Comment: "hi"},
		{Type: EventTicketEscalated, Email: "a@x.com", Timestamp: testNow.Add(2 * time.Minute), TicketID: "T1"},
		{Type: EventTicketUpdated, Email: "a@x.com", Timestamp: testNow.Add(3 * time.Minute), TicketID: "T1", Updates: map[string]any{"status": "Resolved"}},
	}

	prefix := ReduceHistory(events[:3])
	incremental := ApplyEvent(prefix, events[3])
	full := ReduceHistory(events)

	require.Equal(t, full, incremental)
}

func TestDashboardRecentTicketsWindow(t *testing.T) {
	state := InitialState()
	for i := 0; i < 7; i++ {
		state = ApplyEvent(state, Event{
			Type:      EventTicketCreated,
			Email:     "a@x.com",
			Timestamp: testNow.Add(time.Duration(i) * time.Minute),
			TicketID:  string(rune('A' + i)),
			Details:   &TicketDetails{Subject: "S"},
		})
	}

	require.Equal(t, 7, state.Dashboard.TicketStats.Total)
	require.Len(t, state.Dashboard.RecentTickets, 5)
	require.Equal(t, "C", state.Dashboard.RecentTickets[0].ID)
	require.Equal(t, "G", state.Dashboard.RecentTickets[4].ID)
}
