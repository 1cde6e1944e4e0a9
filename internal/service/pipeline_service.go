package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/eventstore"
	"github.com/spec-kit/helpdesk-service/internal/identity"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// PipelineService sequences one command through
// validate -> fetch history -> transition -> persist -> notify -> shape.
// It owns error propagation: validation failures are 400-class, store
// failures 500-class, and a failed append means the event never happened.
// Notification runs after the append commits and is best-effort only.
type PipelineService struct {
	store      eventstore.Store
	identity   identity.Provider
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PipelineDependencies bundles collaborator requirements for the pipeline.
type PipelineDependencies struct {
	Store      eventstore.Store
	Identity   identity.Provider
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// CommandResult is the response shaped from the final persisted event.
// Session is set when the command minted tokens (login, refresh).
type CommandResult struct {
	Event   domain.Event
	Session *identity.Session
}

// NewPipelineService constructs the service.
func NewPipelineService(deps PipelineDependencies) *PipelineService {
	return &PipelineService{
		store:      deps.Store,
		identity:   deps.Identity,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// SubmitCommand runs the full pipeline for one inbound command. Login and
// refresh commands append a second event recording the identity provider's
// verdict; everything else persists exactly the transition's event.
func (s *PipelineService) SubmitCommand(ctx context.Context, cmd domain.Command) (*CommandResult, error) {
	valid, err := domain.ValidateCommand(cmd, time.Now())
	if err != nil {
		return nil, err
	}

	history, err := s.store.FetchHistory(ctx, valid.Email)
	if err != nil {
		return nil, apperrors.NewHistoryFetchError(err)
	}

	event := domain.Transition(valid, history, valid.Timestamp)
	if err := s.append(ctx, event); err != nil {
		return nil, err
	}

	switch event.Type {
	case domain.EventLoginRequested:
		return s.completeLogin(ctx, event)
	case domain.EventRefreshTokenValidated:
		return s.completeRefresh(ctx, event)
	default:
		return &CommandResult{Event: event}, nil
	}
}

// GetState reconstructs the aggregate snapshot by folding its history.
func (s *PipelineService) GetState(ctx context.Context, email string) (domain.State, error) {
	history, err := s.store.FetchHistory(ctx, email)
	if err != nil {
		return domain.State{}, apperrors.NewHistoryFetchError(err)
	}
	return domain.ReduceHistory(history), nil
}

// completeLogin asks the identity provider to verify the credentials the
// LOGIN_REQUESTED event carries and records the verdict as a second event.
func (s *PipelineService) completeLogin(ctx context.Context, requested domain.Event) (*CommandResult, error) {
	session, err := s.identity.SignIn(ctx, requested.Email, requested.Password)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, apperrors.NewInternalError(err)
		}
		failed := domain.Event{
			Type:      domain.EventLoginFailed,
			Email:     requested.Email,
			Timestamp: time.Now(),
			Reason:    "invalid credentials",
		}
		if err := s.append(ctx, failed); err != nil {
			return nil, err
		}
		return &CommandResult{Event: failed}, nil
	}

	succeeded := domain.Event{
		Type:         domain.EventLoginSucceeded,
		Email:        requested.Email,
		Timestamp:    time.Now(),
		UserID:       session.UserID,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}
	if err := s.append(ctx, succeeded); err != nil {
		return nil, err
	}
	return &CommandResult{Event: succeeded, Session: session}, nil
}

// completeRefresh runs the impure half of refresh validation: the transition
// already proved provenance from the log, the provider now checks signature
// and expiry and mints the next pair.
func (s *PipelineService) completeRefresh(ctx context.Context, validated domain.Event) (*CommandResult, error) {
	session, err := s.identity.Refresh(ctx, validated.Email, validated.Token)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidToken) {
			return nil, apperrors.NewInternalError(err)
		}
		invalid := domain.Event{
			Type:      domain.EventInvalidRefreshToken,
			Email:     validated.Email,
			Timestamp: time.Now(),
			Token:     validated.Token,
			Reason:    "Token expired or malformed",
		}
		if err := s.append(ctx, invalid); err != nil {
			return nil, err
		}
		return &CommandResult{Event: invalid}, nil
	}

	refreshed := domain.Event{
		Type:            domain.EventTokenRefreshed,
		Email:           validated.Email,
		Timestamp:       time.Now(),
		UserID:          session.UserID,
		NewAccessToken:  session.AccessToken,
		NewRefreshToken: session.RefreshToken,
	}
	if err := s.append(ctx, refreshed); err != nil {
		return nil, err
	}
	return &CommandResult{Event: refreshed, Session: session}, nil
}

// append persists the event, then forwards it best-effort. A persist failure
// means the event did not happen and nothing is forwarded; a notify failure
// is logged and swallowed, the committed event stands.
func (s *PipelineService) append(ctx context.Context, event domain.Event) error {
	if _, err := s.store.Append(ctx, event); err != nil {
		return apperrors.NewPersistError(err)
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event notification failed",
				zap.String("event_type", string(event.Type)),
				zap.String("aggregate", event.Email),
				zap.Error(err))
		}
	}
	return nil
}
