package registration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/internal/users"
	"github.com/abiagrow/connect-backend/pkg/db/models"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

func setupRegistrationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  email_verified INTEGER NOT NULL DEFAULT 0,
  verification_token TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS farmers (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  surname TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL UNIQUE,
  lga TEXT,
  farm_name TEXT,
  reg_date DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1
);`, `
CREATE TABLE IF NOT EXISTS buyers (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  surname TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL UNIQUE,
  lga TEXT NOT NULL,
  location TEXT NOT NULL,
  reg_date DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type registrationFixture struct {
	svc Service
	db  *gorm.DB
}

func setupRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	conn := setupRegistrationTestDB(t)

	svc, err := NewService(ServiceParams{
		Repo:  NewRepository(conn),
		Users: users.NewRepository(conn),
	})
	require.NoError(t, err)

	return &registrationFixture{svc: svc, db: conn}
}

func (fx *registrationFixture) seedUser(t *testing.T, email string, verified bool) uuid.UUID {
	t.Helper()
	user := &models.User{
		Email:         email,
		PasswordHash:  "x",
		FirstName:     "Ada",
		LastName:      "Obi",
		EmailVerified: verified,
		IsActive:      true,
	}
	require.NoError(t, fx.db.Create(user).Error)
	return user.ID
}

func TestRegisterFarmer(t *testing.T) {
	fx := setupRegistrationFixture(t)
	userID := fx.seedUser(t, "ada@example.com", true)

	farmName := "Obi Family Farm"
	created, err := fx.svc.RegisterFarmer(context.Background(), userID, RegisterFarmerRequest{
		FirstName: "Ada",
		Surname:   "Obi",
		Phone:     "+2348012345678",
		FarmName:  &farmName,
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", created.Email)
	require.True(t, created.IsActive)
	require.Equal(t, "Obi Family Farm", *created.FarmName)

	_, err = fx.svc.RegisterFarmer(context.Background(), userID, RegisterFarmerRequest{
		FirstName: "Ada", Surname: "Obi", Phone: "+2348099999999",
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestRegisterFarmerRequiresVerifiedEmail(t *testing.T) {
	fx := setupRegistrationFixture(t)
	userID := fx.seedUser(t, "ada@example.com", false)

	_, err := fx.svc.RegisterFarmer(context.Background(), userID, RegisterFarmerRequest{
		FirstName: "Ada", Surname: "Obi", Phone: "+2348012345678",
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeForbidden, coded.Code())
}

func TestRegisterFarmerPhoneUnique(t *testing.T) {
	fx := setupRegistrationFixture(t)
	ctx := context.Background()

	first := fx.seedUser(t, "ada@example.com", true)
	second := fx.seedUser(t, "ngozi@example.com", true)

	_, err := fx.svc.RegisterFarmer(ctx, first, RegisterFarmerRequest{
		FirstName: "Ada", Surname: "Obi", Phone: "+2348012345678",
	})
	require.NoError(t, err)

	_, err = fx.svc.RegisterFarmer(ctx, second, RegisterFarmerRequest{
		FirstName: "Ngozi", Surname: "Eze", Phone: "+2348012345678",
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestDeactivateFarmer(t *testing.T) {
	fx := setupRegistrationFixture(t)
	ctx := context.Background()
	userID := fx.seedUser(t, "ada@example.com", true)

	_, err := fx.svc.RegisterFarmer(ctx, userID, RegisterFarmerRequest{
		FirstName: "Ada", Surname: "Obi", Phone: "+2348012345678",
	})
	require.NoError(t, err)

	deactivated, err := fx.svc.DeactivateFarmer(ctx, userID)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	// idempotent, and the row survives
	again, err := fx.svc.DeactivateFarmer(ctx, userID)
	require.NoError(t, err)
	require.False(t, again.IsActive)

	phone := "+2348011111111"
	_, err = fx.svc.UpdateFarmer(ctx, userID, UpdateFarmerRequest{Phone: &phone})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestRegisterBuyerRequiresLocation(t *testing.T) {
	fx := setupRegistrationFixture(t)
	userID := fx.seedUser(t, "ada@example.com", true)

	_, err := fx.svc.RegisterBuyer(context.Background(), userID, RegisterBuyerRequest{
		FirstName: "Ada", Surname: "Obi", Phone: "+2348012345678",
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())

	created, err := fx.svc.RegisterBuyer(context.Background(), userID, RegisterBuyerRequest{
		FirstName: "Ada", Surname: "Obi", Phone: "+2348012345678",
		LGA: "Umuahia North", Location: "World Bank Housing Estate",
	})
	require.NoError(t, err)
	require.Equal(t, "Umuahia North", created.LGA)
}

func TestUpdateBuyer(t *testing.T) {
	fx := setupRegistrationFixture(t)
	ctx := context.Background()
	userID := fx.seedUser(t, "ada@example.com", true)

	_, err := fx.svc.RegisterBuyer(ctx, userID, RegisterBuyerRequest{
		FirstName: "Ada", Surname: "Obi", Phone: "+2348012345678",
		LGA: "Umuahia North", Location: "World Bank Housing Estate",
	})
	require.NoError(t, err)

	location := "Aba Road"
	updated, err := fx.svc.UpdateBuyer(ctx, userID, UpdateBuyerRequest{Location: &location})
	require.NoError(t, err)
	require.Equal(t, "Aba Road", updated.Location)

	_, err = fx.svc.UpdateBuyer(ctx, userID, UpdateBuyerRequest{})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
}
