package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abiagrow/connect-backend/internal/users"
	pkgAuth "github.com/abiagrow/connect-backend/pkg/auth"
	"github.com/abiagrow/connect-backend/pkg/auth/session"
	"github.com/abiagrow/connect-backend/pkg/config"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/abiagrow/connect-backend/pkg/logger"
	"github.com/abiagrow/connect-backend/pkg/mailer"
	"github.com/abiagrow/connect-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	VerifyEmail(ctx context.Context, token uuid.UUID) (*users.UserDTO, error)
	ResendVerification(ctx context.Context, req ResendVerificationRequest) error
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token uuid.UUID) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	RotateVerificationToken(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type service struct {
	users       userRepository
	session     sessionManager
	mail        mailer.Sender
	mailBuilder MailBuilder
	jwtCfg      config.JWTConfig
	logg        *logger.Logger
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Mailer         mailer.Sender
	MailBuilder    MailBuilder
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Mailer == nil || params.MailBuilder == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		mail:        params.Mailer,
		mailBuilder: params.MailBuilder,
		jwtCfg:      params.JWTConfig,
		logg:        params.Logger,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	accessID := session.NewAccessID()
	tokenPayload := pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, tokenPayload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

// VerifyEmail flips the account to verified and sends the welcome email.
// Verification is committed before the welcome send, so a delivery failure
// never rolls back the flag.
func (s *service) VerifyEmail(ctx context.Context, token uuid.UUID) (*users.UserDTO, error) {
	if token == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification token required")
	}

	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "verification token not recognized")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup verification token")
	}
	if user.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "email already verified")
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark email verified")
	}
	user.EmailVerified = true

	if err := s.mail.Send(ctx, s.mailBuilder.WelcomeEmail(user.Email)); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "welcome email failed: "+err.Error())
	}

	return users.FromModel(user), nil
}

// ResendVerification rotates the token and re-sends the verification email.
func (s *service) ResendVerification(ctx context.Context, req ResendVerificationRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.EmailVerified {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "email already verified")
	}

	token, err := s.users.RotateVerificationToken(ctx, user.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate verification token")
	}

	return s.mail.Send(ctx, s.mailBuilder.VerificationEmail(user.Email, token.String()))
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
