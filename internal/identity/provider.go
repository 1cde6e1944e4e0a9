package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// Sentinel failures the orchestrator turns into LOGIN_FAILED and
// INVALID_REFRESH_TOKEN events rather than transport errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid refresh token")
	ErrEmailTaken         = errors.New("email already registered")
)

// Session is the token pair minted for an authenticated user.
type Session struct {
	UserID           string
	Email            string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Provider is the identity collaborator the command pipeline consumes. All
// credential and token-crypto concerns live here, never in the pure core:
// the transition function only records intent and provenance.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, email, refreshToken string) (*Session, error)
}

// LocalProvider implements Provider against the users table with HS256 JWTs.
type LocalProvider struct {
	users      UserRepository
	tokens     *TokenManager
	bcryptCost int
}

// NewLocalProvider builds a LocalProvider over the given user repository.
func NewLocalProvider(cfg config.IdentityConfig, users UserRepository) *LocalProvider {
	return &LocalProvider{
		users:      users,
		tokens:     NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes, cfg.RefreshTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	if _, err := p.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &User{Email: email, PasswordHash: hash}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return p.mintSession(user.ID, user.Email)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	// best effort, a login still counts if the stamp fails
	_ = p.users.TouchLastLogin(ctx, user.ID)
	return p.mintSession(user.ID, user.Email)
}

func (p *LocalProvider) Refresh(_ context.Context, email, refreshToken string) (*Session, error) {
	claims, err := p.tokens.ParseToken(refreshToken, TokenUseRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Email != email {
		return nil, ErrInvalidToken
	}
	return p.mintSession(claims.Subject, claims.Email)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (p *LocalProvider) TokenManager() *TokenManager {
	return p.tokens
}

func (p *LocalProvider) mintSession(userID, email string) (*Session, error) {
	access, accessExp, err := p.tokens.GenerateToken(userID, email, TokenUseAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := p.tokens.GenerateToken(userID, email, TokenUseRefresh)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:           userID,
		Email:            email,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
