package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/abiagrow/connect-backend/internal/users"
	"github.com/abiagrow/connect-backend/pkg/config"
	"github.com/abiagrow/connect-backend/pkg/db"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/abiagrow/connect-backend/pkg/mailer"
	"github.com/abiagrow/connect-backend/pkg/security"
	"gorm.io/gorm"
)

// RegisterRequest contains the payload required for creating an account.
type RegisterRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role,omitempty"`
}

// RegisterResponse echoes the created user. No tokens are issued until the
// email address is verified.
type RegisterResponse struct {
	User *users.UserDTO `json:"user"`
}

// RegisterService handles account creation and the verification email.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	Mailer         mailer.Sender
	MailBuilder    MailBuilder
	PasswordConfig config.PasswordConfig
}

// MailBuilder produces the outbound account emails.
type MailBuilder interface {
	VerificationEmail(to, token string) mailer.Message
	WelcomeEmail(to string) mailer.Message
}

type registerService struct {
	db          *db.Client
	mail        mailer.Sender
	mailBuilder MailBuilder
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Mailer == nil || params.MailBuilder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mailer required")
	}
	return &registerService{
		db:          params.DB,
		mail:        params.Mailer,
		mailBuilder: params.MailBuilder,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	role := enums.UserRoleCustomer
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := enums.ParseUserRole(req.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be customer or vendor")
		}
		if parsed == enums.UserRoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be customer or vendor")
		}
		role = parsed
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			Role:         role,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_users_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The account exists either way; a failed send surfaces as a delivery
	// error so the client can prompt a resend.
	msg := s.mailBuilder.VerificationEmail(created.Email, created.VerificationToken.String())
	if err := s.mail.Send(ctx, msg); err != nil {
		return nil, err
	}

	return &RegisterResponse{User: users.FromModel(created)}, nil
}
