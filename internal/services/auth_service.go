package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/auth"
	"github.com/yukikurage/field-task-api/internal/metrics"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/repository"
	"github.com/yukikurage/field-task-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionInvalid     = errors.New("session expired or revoked")
)

// Login channels, used as metric labels.
const (
	ChannelWeb    = "web"
	ChannelMobile = "mobile"
)

// AuthService verifies credentials and owns the session store that maps
// client tokens to principals.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *auth.TokenIssuer
	metrics     *metrics.Metrics
	ttl         time.Duration
	bearerTTL   time.Duration
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokens *auth.TokenIssuer,
	m *metrics.Metrics,
	ttl time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		metrics:     m,
		ttl:         ttl,
		bearerTTL:   ttl,
		now:         time.Now,
	}
}

// WithBearerTTL sets the lifetime of mobile sessions. Zero keeps the web lifetime.
func (s *AuthService) WithBearerTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.bearerTTL = ttl
	}
	return s
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is a freshly opened session.
type LoginResult struct {
	Principal access.Principal
	Token     string
	ExpiresAt time.Time
}

// Authenticate returns the principal for valid credentials. The user and its
// company must both be active. Every mismatch yields ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, input LoginInput) (access.Principal, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Principal{}, ErrInvalidCredentials
		}
		return access.Principal{}, fmt.Errorf("failed to find user: %w", err)
	}

	if !utils.CheckPassword(input.Password, user.PasswordHash) {
		return access.Principal{}, ErrInvalidCredentials
	}
	if !user.Active || !user.Company.Active {
		return access.Principal{}, ErrInvalidCredentials
	}

	p, err := access.NewPrincipal(user, &user.Company)
	if err != nil {
		return access.Principal{}, ErrInvalidCredentials
	}
	return p, nil
}

// Login opens a web session. The returned token is only ever stored hashed.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	p, err := s.Authenticate(ctx, input)
	s.metrics.Login(ChannelWeb, err == nil)
	if err != nil {
		return nil, err
	}

	raw, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	session, err := s.openSession(ctx, p, utils.HashToken(raw), s.ttl)
	if err != nil {
		return nil, err
	}

	p.SessionID = session.ID
	return &LoginResult{Principal: p, Token: raw, ExpiresAt: session.ExpiresAt}, nil
}

// LoginBearer opens a session for the mobile API and returns a signed bearer token.
func (s *AuthService) LoginBearer(ctx context.Context, input LoginInput) (*LoginResult, error) {
	p, err := s.Authenticate(ctx, input)
	s.metrics.Login(ChannelMobile, err == nil)
	if err != nil {
		return nil, err
	}

	// The hash column must stay unique; bearer sessions get a random one.
	raw, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	session, err := s.openSession(ctx, p, utils.HashToken(raw), s.bearerTTL)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(session.ID, p.UserID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	p.SessionID = session.ID
	return &LoginResult{Principal: p, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// openSession stores a new session after purging expired and revoked ones.
func (s *AuthService) openSession(ctx context.Context, p access.Principal, tokenHash string, ttl time.Duration) (*models.Session, error) {
	if n, err := s.PurgeExpired(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to purge sessions")
	} else if n > 0 {
		log.Debug().Int64("count", n).Msg("purged sessions")
	}

	session := &models.Session{
		UserID:    p.UserID,
		TokenHash: tokenHash,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ResolveToken maps a raw web session token to its principal.
func (s *AuthService) ResolveToken(ctx context.Context, raw string) (access.Principal, error) {
	if raw == "" {
		return access.Principal{}, ErrSessionInvalid
	}
	session, err := s.sessionRepo.FindByTokenHash(ctx, utils.HashToken(raw))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Principal{}, ErrSessionInvalid
		}
		return access.Principal{}, fmt.Errorf("failed to find session: %w", err)
	}
	return s.principalFor(ctx, session)
}

// ResolveBearer maps a signed mobile token to its principal.
func (s *AuthService) ResolveBearer(ctx context.Context, token string) (access.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return access.Principal{}, ErrSessionInvalid
	}
	session, err := s.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Principal{}, ErrSessionInvalid
		}
		return access.Principal{}, fmt.Errorf("failed to find session: %w", err)
	}
	if session.UserID != claims.UserID {
		return access.Principal{}, ErrSessionInvalid
	}
	return s.principalFor(ctx, session)
}

// principalFor reloads the user so that deactivation, role changes and
// company deactivation take effect on the next request.
func (s *AuthService) principalFor(ctx context.Context, session *models.Session) (access.Principal, error) {
	if !session.Usable(s.now()) {
		return access.Principal{}, ErrSessionInvalid
	}

	user, err := s.userRepo.FindWithCompany(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Principal{}, ErrSessionInvalid
		}
		return access.Principal{}, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.Active || !user.Company.Active {
		return access.Principal{}, ErrSessionInvalid
	}

	p, err := access.NewPrincipal(user, &user.Company)
	if err != nil {
		return access.Principal{}, ErrSessionInvalid
	}
	p.SessionID = session.ID
	return p, nil
}

// Logout revokes one session.
func (s *AuthService) Logout(ctx context.Context, sessionID uint64) error {
	if sessionID == 0 {
		return nil
	}
	if err := s.sessionRepo.Revoke(ctx, sessionID, s.now()); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired and revoked sessions.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, s.now())
}
