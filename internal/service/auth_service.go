package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/repository"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

var (
	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotAdmin is returned when a valid account lacks the admin role.
	ErrNotAdmin = errors.New("account is not an administrator")
	// ErrNoSession is returned when logout is attempted without a session.
	ErrNoSession = errors.New("no active session")
)

// AuthService signs admins in and out of the panel.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (dto.SessionResponse, error)
	EnsureAdmin(ctx context.Context, email, passwordHash string) error
}

type authService struct {
	users    repository.UserRepository
	issuer   *identity.Issuer
	revoker  identity.SessionRevoker
	identity identity.Provider
	activity ActivityService
	logger   zerolog.Logger
}

// NewAuthService constructs the authentication service. revoker may be nil.
func NewAuthService(users repository.UserRepository, issuer *identity.Issuer, revoker identity.SessionRevoker, provider identity.Provider, activity ActivityService, logger zerolog.Logger) AuthService {
	return &authService{
		users:    users,
		issuer:   issuer,
		revoker:  revoker,
		identity: provider,
		activity: activity,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info().Str("email", email).Msg("rejected admin login")
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	isAdmin, err := s.users.HasRole(ctx, user.ID, models.RoleAdmin)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if !isAdmin {
		return dto.LoginResponse{}, ErrNotAdmin
	}

	session, token, err := s.issuer.Issue(identity.User{ID: user.ID, Email: user.Email})
	if err != nil {
		return dto.LoginResponse{}, err
	}

	// The request itself is anonymous, so the audit entry runs under the new session.
	if s.activity != nil {
		s.activity.Record(identity.WithSession(ctx, session), ActivityEntry{
			Action:      models.ActivityLogin,
			TargetTable: models.AuthTable,
			Description: fmt.Sprintf("Login admin: %s", user.Email),
		})
	}

	return dto.LoginResponse{Token: token, Session: dto.NewSessionResponse(session)}, nil
}

func (s *authService) Logout(ctx context.Context) error {
	session, ok := s.identity.Session(ctx)
	if !ok {
		return ErrNoSession
	}

	if s.revoker != nil {
		if err := s.revoker.Revoke(ctx, session); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}

	if s.activity != nil {
		s.activity.Record(ctx, ActivityEntry{
			Action:      models.ActivityLogout,
			TargetTable: models.AuthTable,
			Description: fmt.Sprintf("Logout admin: %s", session.User.Email),
		})
	}
	return nil
}

func (s *authService) Session(ctx context.Context) (dto.SessionResponse, error) {
	session, ok := s.identity.Session(ctx)
	if !ok {
		return dto.SessionResponse{}, ErrNoSession
	}
	return dto.NewSessionResponse(session), nil
}

// EnsureAdmin creates or refreshes the bootstrap admin account.
func (s *authService) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(passwordHash) == "" {
		return nil
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return fmt.Errorf("admin password hash: %w", err)
	}

	user := models.AdminUser{Email: email, PasswordHash: passwordHash}
	if err := s.users.Upsert(ctx, &user); err != nil {
		return err
	}
	if err := s.users.GrantRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info().Str("email", email).Msg("admin account ensured")
	return nil
}
