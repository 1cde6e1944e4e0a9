package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/eventstore"
	"github.com/spec-kit/helpdesk-service/internal/identity"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Mock event store for failure-path tests
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Append(ctx context.Context, event domain.Event) (*eventstore.StoredEvent, error) {
	args := m.Called(ctx, event)
	var stored *eventstore.StoredEvent
	if v := args.Get(0); v != nil {
		stored = v.(*eventstore.StoredEvent)
	}
	return stored, args.Error(1)
}

func (m *MockStore) FetchHistory(ctx context.Context, aggregateKey string) ([]domain.Event, error) {
	args := m.Called(ctx, aggregateKey)
	var history []domain.Event
	if v := args.Get(0); v != nil {
		history = v.([]domain.Event)
	}
	return history, args.Error(1)
}

// Mock identity provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SignUp(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	var session *identity.Session
	if v := args.Get(0); v != nil {
		session = v.(*identity.Session)
	}
	return session, args.Error(1)
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	var session *identity.Session
	if v := args.Get(0); v != nil {
		session = v.(*identity.Session)
	}
	return session, args.Error(1)
}

func (m *MockProvider) Refresh(ctx context.Context, email, refreshToken string) (*identity.Session, error) {
	args := m.Called(ctx, email, refreshToken)
	var session *identity.Session
	if v := args.Get(0); v != nil {
		session = v.(*identity.Session)
	}
	return session, args.Error(1)
}

// eventRecorder captures everything published on the dispatcher.
type eventRecorder struct {
	mu       sync.Mutex
	received []domain.Event
}

func (r *eventRecorder) handle(_ context.Context, event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, event)
	return nil
}

func (r *eventRecorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.received))
	for _, event := range r.received {
		out = append(out, event.Type)
	}
	return out
}

func newTestPipeline(store eventstore.Store, provider identity.Provider) (*PipelineService, *eventRecorder) {
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	for _, eventType := range []domain.EventType{
		domain.EventTicketCreated,
		domain.EventTicketUpdated,
		domain.EventCommentAdded,
		domain.EventTicketEscalated,
	} {
		dispatcher.Subscribe(eventType, recorder.handle)
	}
	pipeline := NewPipelineService(PipelineDependencies{
		Store:      store,
		Identity:   provider,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return pipeline, recorder
}

func localIdentity() identity.Provider {
	cfg := config.IdentityConfig{
		JWTSecret:              "test-secret",
		AccessTokenTTLMinutes:  5,
		RefreshTokenTTLMinutes: 60,
		BcryptCost:             4,
	}
	return identity.NewLocalProvider(cfg, identity.NewMemoryUserRepository())
}

func TestSubmitCreateTicket(t *testing.T) {
	store := eventstore.NewMemoryStore()
	pipeline, recorder := newTestPipeline(store, localIdentity())

	result, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type:          domain.CommandCreateTicket,
		Email:         "a@x.com",
		TicketDetails: &domain.TicketDetails{Subject: "S", Description: "D"},
	})

	require.NoError(t, err)
	require.Equal(t, domain.EventTicketCreated, result.Event.Type)
	require.NotEmpty(t, result.Event.TicketID)
	require.Nil(t, result.Session)

	// persisted and forwarded
	history, err := store.FetchHistory(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, []domain.EventType{domain.EventTicketCreated}, recorder.types())

	// the state query path sees the ticket
	state, err := pipeline.GetState(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, state.Tickets, 1)
	require.Equal(t, domain.TicketStatusOpen, state.Tickets[0].Status)
}

func TestSubmitValidationFailureShortCircuits(t *testing.T) {
	store := new(MockStore)
	pipeline, _ := newTestPipeline(store, localIdentity())

	_, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type: domain.CommandCreateTicket,
		// no email, no details
	})

	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	store.AssertNotCalled(t, "FetchHistory", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSubmitHistoryFetchFailure(t *testing.T) {
	store := new(MockStore)
	store.On("FetchHistory", mock.Anything, "a@x.com").Return(nil, errors.New("db down"))
	pipeline, _ := newTestPipeline(store, localIdentity())

	_, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type:     domain.CommandEscalateTicket,
		Email:    "a@x.com",
		TicketID: "T1",
	})

	require.Error(t, err)
	require.Equal(t, "HISTORY_FETCH_FAILED", apperrors.ToDomainError(err).Code)
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSubmitPersistFailureIsNotNotified(t *testing.T) {
	store := new(MockStore)
	store.On("FetchHistory", mock.Anything, "a@x.com").Return([]domain.Event{}, nil)
	store.On("Append", mock.Anything, mock.AnythingOfType("domain.Event")).Return(nil, errors.New("insert failed"))
	pipeline, recorder := newTestPipeline(store, localIdentity())

	_, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type:          domain.CommandCreateTicket,
		Email:         "a@x.com",
		TicketDetails: &domain.TicketDetails{Subject: "S"},
	})

	require.Error(t, err)
	require.Equal(t, "PERSIST_FAILED", apperrors.ToDomainError(err).Code)
	require.Empty(t, recorder.types())
}

func TestSubmitNotifyFailureDoesNotFailRequest(t *testing.T) {
	store := eventstore.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(domain.EventTicketCreated, func(context.Context, domain.Event) error {
		return errors.New("webhook down")
	})
	pipeline := NewPipelineService(PipelineDependencies{
		Store:      store,
		Identity:   localIdentity(),
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})

	result, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type:          domain.CommandCreateTicket,
		Email:         "a@x.com",
		TicketDetails: &domain.TicketDetails{Subject: "S"},
	})

	require.NoError(t, err)
	require.Equal(t, domain.EventTicketCreated, result.Event.Type)

	history, err := store.FetchHistory(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestSubmitLoginSuccessRecordsBothEvents(t *testing.T) {
	store := eventstore.NewMemoryStore()
	provider := localIdentity()
	_, err := provider.SignUp(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)
	pipeline, _ := newTestPipeline(store, provider)

	result, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type:     domain.CommandLoginAttempt,
		Email:    "a@x.com",
		Password: "hunter2",
	})

	require.NoError(t, err)
	require.Equal(t, domain.EventLoginSucceeded, result.Event.Type)
	require.NotNil(t, result.Session)
	require.NotEmpty(t, result.Session.AccessToken)

	history, err := store.FetchHistory(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, domain.EventLoginRequested, history[0].Type)
	require.Equal(t, domain.EventLoginSucceeded, history[1].Type)
}

func TestSubmitLoginFailureRecordsFailedEvent(t *testing.T) {
	store := eventstore.NewMemoryStore()
	provider := localIdentity()
	_, err := provider.SignUp(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)
	pipeline, _ := newTestPipeline(store, provider)

	result, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type:     domain.CommandLoginAttempt,
		Email:    "a@x.com",
		Password: "wrong",
	})

	require.NoError(t, err)
	require.Equal(t, domain.EventLoginFailed, result.Event.Type)
	require.Nil(t, result.Session)

	history, err := store.FetchHistory(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, domain.EventLoginFailed, history[1].Type)
}

func TestSubmitRefreshTokenRoundTrip(t *testing.T) {
	store := eventstore.NewMemoryStore()
	provider := localIdentity()
	_, err := provider.SignUp(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)
	pipeline, _ := newTestPipeline(store, provider)

	login, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type:     domain.CommandLoginAttempt,
		Email:    "a@x.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	refresh, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type:         domain.CommandRefreshToken,
		Email:        "a@x.com",
		RefreshToken: login.Session.RefreshToken,
	})

	require.NoError(t, err)
	require.Equal(t, domain.EventTokenRefreshed, refresh.Event.Type)
	require.NotNil(t, refresh.Session)
	require.NotEmpty(t, refresh.Event.NewRefreshToken)

	history, err := store.FetchHistory(context.Background(), "a@x.com")
	require.NoError(t, err)
	// login requested, login succeeded, validated, refreshed
	require.Len(t, history, 4)
	require.Equal(t, domain.EventRefreshTokenValidated, history[2].Type)
	require.Equal(t, domain.EventTokenRefreshed, history[3].Type)
}

func TestSubmitRefreshTokenNeverIssued(t *testing.T) {
	store := eventstore.NewMemoryStore()
	pipeline, _ := newTestPipeline(store, localIdentity())

	result, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type:         domain.CommandRefreshToken,
		Email:        "a@x.com",
		RefreshToken: "never-issued",
	})

	require.NoError(t, err)
	require.Equal(t, domain.EventInvalidRefreshToken, result.Event.Type)
	require.Equal(t, domain.ReasonTokenNotFound, result.Event.Reason)
}

func TestSubmitRefreshRevokedTokenStaysRevoked(t *testing.T) {
	store := eventstore.NewMemoryStore()
	provider := new(MockProvider)
	provider.On("Refresh", mock.Anything, "a@x.com", "T").Return(nil, identity.ErrInvalidToken)
	pipeline, _ := newTestPipeline(store, provider)

	// issue T, then let the provider reject it once (expiry): the pipeline
	// records the invalidation
	_, err := store.Append(context.Background(), domain.Event{
		Type: domain.EventLoginSucceeded, Email: "a@x.com", RefreshToken: "T",
	})
	require.NoError(t, err)

	first, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type: domain.CommandRefreshToken, Email: "a@x.com", RefreshToken: "T",
	})
	require.NoError(t, err)
	require.Equal(t, domain.EventInvalidRefreshToken, first.Event.Type)

	// the blacklist now wins before the provider is consulted again
	second, err := pipeline.SubmitCommand(context.Background(), domain.Command{
		Type: domain.CommandRefreshToken, Email: "a@x.com", RefreshToken: "T",
	})
	require.NoError(t, err)
	require.Equal(t, domain.EventInvalidRefreshToken, second.Event.Type)
	require.Equal(t, domain.ReasonTokenInvalidated, second.Event.Reason)
	provider.AssertNumberOfCalls(t, "Refresh", 1)
}

func TestGetStateFailure(t *testing.T) {
	store := new(MockStore)
	store.On("FetchHistory", mock.Anything, "a@x.com").Return(nil, errors.New("db down"))
	pipeline, _ := newTestPipeline(store, localIdentity())

	_, err := pipeline.GetState(context.Background(), "a@x.com")

	require.Error(t, err)
	require.Equal(t, "HISTORY_FETCH_FAILED", apperrors.ToDomainError(err).Code)
}
