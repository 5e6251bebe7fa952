package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/abiagrow/connect-backend/pkg/auth"
	"github.com/abiagrow/connect-backend/pkg/config"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/abiagrow/connect-backend/pkg/mailer"
	"github.com/abiagrow/connect-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	user          *models.User
	markedID      uuid.UUID
	rotatedID     uuid.UUID
	rotatedToken  uuid.UUID
	lastLoginUser uuid.UUID
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.user
	return &copy, nil
}

func (s *stubUserRepo) FindByVerificationToken(ctx context.Context, token uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.VerificationToken != token {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.user
	return &copy, nil
}

func (s *stubUserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	s.markedID = id
	s.user.EmailVerified = true
	return nil
}

func (s *stubUserRepo) RotateVerificationToken(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	s.rotatedID = id
	s.rotatedToken = uuid.New()
	return s.rotatedToken, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginUser = id
	return nil
}

type stubSession struct {
	generated string
}

func (s *stubSession) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = "refresh-" + accessID
	return s.generated, nil
}

type stubMailer struct {
	sent []mailer.Message
	err  error
}

func (s *stubMailer) Send(ctx context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type stubMailBuilder struct{}

func (stubMailBuilder) VerificationEmail(to, token string) mailer.Message {
	return mailer.Message{To: to, Subject: "verify", TextBody: token}
}

func (stubMailBuilder) WelcomeEmail(to string) mailer.Message {
	return mailer.Message{To: to, Subject: "welcome", TextBody: "welcome"}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "abiagrow",
		ExpirationMinutes: 30,
	}
}

func buildTestService(t *testing.T, repo *stubUserRepo, mail *stubMailer) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: &stubSession{},
		Mailer:         mail,
		MailBuilder:    stubMailBuilder{},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestServiceLoginIssuesTokens(t *testing.T) {
	password := "farm-secret-1"
	repo := &stubUserRepo{user: &models.User{
		ID:            uuid.New(),
		Email:         "vendor@example.com",
		PasswordHash:  mustHashPassword(t, password),
		FirstName:     "Ada",
		LastName:      "Okafor",
		Role:          enums.UserRoleVendor,
		EmailVerified: true,
		IsActive:      true,
	}}
	svc := buildTestService(t, repo, &stubMailer{})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "vendor@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleVendor {
		t.Fatalf("expected vendor role claim, got %s", claims.Role)
	}
	if claims.UserID != repo.user.ID {
		t.Fatalf("unexpected user id claim %s", claims.UserID)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}
	if repo.lastLoginUser != repo.user.ID {
		t.Fatal("expected last login update")
	}
}

func TestServiceLoginRejectsBadPassword(t *testing.T) {
	repo := &stubUserRepo{user: &models.User{
		ID:           uuid.New(),
		Email:        "vendor@example.com",
		PasswordHash: mustHashPassword(t, "right-password"),
		Role:         enums.UserRoleVendor,
		IsActive:     true,
	}}
	svc := buildTestService(t, repo, &stubMailer{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "vendor@example.com",
		Password: "wrong-password",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "farm-secret-1"
	repo := &stubUserRepo{user: &models.User{
		ID:           uuid.New(),
		Email:        "gone@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleCustomer,
		IsActive:     false,
	}}
	svc := buildTestService(t, repo, &stubMailer{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "gone@example.com",
		Password: password,
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyEmailMarksVerifiedAndSendsWelcome(t *testing.T) {
	token := uuid.New()
	repo := &stubUserRepo{user: &models.User{
		ID:                uuid.New(),
		Email:             "new@example.com",
		Role:              enums.UserRoleCustomer,
		VerificationToken: token,
		IsActive:          true,
	}}
	mail := &stubMailer{}
	svc := buildTestService(t, repo, mail)

	dto, err := svc.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("verify email: %v", err)
	}
	if !dto.EmailVerified {
		t.Fatal("expected verified user in response")
	}
	if repo.markedID != repo.user.ID {
		t.Fatal("expected MarkEmailVerified call")
	}
	if len(mail.sent) != 1 || mail.sent[0].Subject != "welcome" {
		t.Fatalf("expected welcome email, got %+v", mail.sent)
	}
}

func TestVerifyEmailUnknownTokenIsNotFound(t *testing.T) {
	repo := &stubUserRepo{user: &models.User{
		ID:                uuid.New(),
		Email:             "new@example.com",
		VerificationToken: uuid.New(),
	}}
	svc := buildTestService(t, repo, &stubMailer{})

	_, err := svc.VerifyEmail(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVerifyEmailTwiceIsStateConflict(t *testing.T) {
	token := uuid.New()
	repo := &stubUserRepo{user: &models.User{
		ID:                uuid.New(),
		Email:             "new@example.com",
		VerificationToken: token,
		EmailVerified:     true,
	}}
	svc := buildTestService(t, repo, &stubMailer{})

	_, err := svc.VerifyEmail(context.Background(), token)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestResendVerificationRotatesToken(t *testing.T) {
	repo := &stubUserRepo{user: &models.User{
		ID:                uuid.New(),
		Email:             "new@example.com",
		VerificationToken: uuid.New(),
	}}
	mail := &stubMailer{}
	svc := buildTestService(t, repo, mail)

	err := svc.ResendVerification(context.Background(), ResendVerificationRequest{Email: "new@example.com"})
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if repo.rotatedID != repo.user.ID {
		t.Fatal("expected token rotation")
	}
	if len(mail.sent) != 1 || mail.sent[0].TextBody != repo.rotatedToken.String() {
		t.Fatalf("expected verification email carrying new token, got %+v", mail.sent)
	}
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	repo := &stubUserRepo{user: &models.User{
		ID:            uuid.New(),
		Email:         "done@example.com",
		EmailVerified: true,
	}}
	svc := buildTestService(t, repo, &stubMailer{})

	err := svc.ResendVerification(context.Background(), ResendVerificationRequest{Email: "done@example.com"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
