package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abiagrow/connect-backend/pkg/db/models"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
)

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service manages the farmer and buyer exchange profiles. Both sit 1:1
// on a verified user account; a farmer is retired by deactivation, never
// deleted.
type Service interface {
	RegisterFarmer(ctx context.Context, userID uuid.UUID, req RegisterFarmerRequest) (*FarmerDTO, error)
	GetFarmer(ctx context.Context, userID uuid.UUID) (*FarmerDTO, error)
	UpdateFarmer(ctx context.Context, userID uuid.UUID, req UpdateFarmerRequest) (*FarmerDTO, error)
	DeactivateFarmer(ctx context.Context, userID uuid.UUID) (*FarmerDTO, error)

	RegisterBuyer(ctx context.Context, userID uuid.UUID, req RegisterBuyerRequest) (*BuyerDTO, error)
	GetBuyer(ctx context.Context, userID uuid.UUID) (*BuyerDTO, error)
	UpdateBuyer(ctx context.Context, userID uuid.UUID, req UpdateBuyerRequest) (*BuyerDTO, error)
}

// ServiceParams collects the dependencies of the registration service.
type ServiceParams struct {
	Repo  *Repository
	Users userLoader
}

type service struct {
	repo  *Repository
	users userLoader
}

// NewService wires a registration service around its repositories.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("registration repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	return &service{repo: params.Repo, users: params.Users}, nil
}

func (s *service) RegisterFarmer(ctx context.Context, userID uuid.UUID, req RegisterFarmerRequest) (*FarmerDTO, error) {
	user, err := s.verifiedUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(req.FirstName)
	surname := strings.TrimSpace(req.Surname)
	phone := strings.TrimSpace(req.Phone)
	if firstName == "" || surname == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name, surname and phone required")
	}

	if _, err := s.repo.FindFarmerByUser(ctx, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "farmer profile already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check farmer profile")
	}

	taken, err := s.repo.FarmerPhoneTaken(ctx, phone, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check farmer phone")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
	}

	farmer := &models.Farmer{
		UserID:    userID,
		FirstName: firstName,
		Surname:   surname,
		Email:     user.Email,
		Phone:     phone,
		LGA:       req.LGA,
		FarmName:  req.FarmName,
		IsActive:  true,
	}
	created, err := s.repo.CreateFarmer(ctx, farmer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create farmer profile")
	}
	return farmerFromModel(created), nil
}

func (s *service) GetFarmer(ctx context.Context, userID uuid.UUID) (*FarmerDTO, error) {
	farmer, err := s.loadFarmer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return farmerFromModel(farmer), nil
}

func (s *service) UpdateFarmer(ctx context.Context, userID uuid.UUID, req UpdateFarmerRequest) (*FarmerDTO, error) {
	farmer, err := s.loadFarmer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !farmer.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "farmer profile is deactivated")
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		if strings.TrimSpace(*req.FirstName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name cannot be empty")
		}
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.Surname != nil {
		if strings.TrimSpace(*req.Surname) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "surname cannot be empty")
		}
		updates["surname"] = strings.TrimSpace(*req.Surname)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone cannot be empty")
		}
		taken, err := s.repo.FarmerPhoneTaken(ctx, phone, farmer.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check farmer phone")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		}
		updates["phone"] = phone
	}
	if req.LGA != nil {
		updates["lga"] = *req.LGA
	}
	if req.FarmName != nil {
		updates["farm_name"] = *req.FarmName
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updates provided")
	}

	if err := s.repo.UpdateFarmer(ctx, farmer.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update farmer profile")
	}

	updated, err := s.repo.FindFarmerByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload farmer profile")
	}
	return farmerFromModel(updated), nil
}

// DeactivateFarmer retires the profile without deleting the row, so the
// registration history survives. Idempotent.
func (s *service) DeactivateFarmer(ctx context.Context, userID uuid.UUID) (*FarmerDTO, error) {
	farmer, err := s.loadFarmer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if farmer.IsActive {
		if err := s.repo.UpdateFarmer(ctx, farmer.ID, map[string]any{"is_active": false}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate farmer profile")
		}
		farmer.IsActive = false
	}
	return farmerFromModel(farmer), nil
}

func (s *service) RegisterBuyer(ctx context.Context, userID uuid.UUID, req RegisterBuyerRequest) (*BuyerDTO, error) {
	user, err := s.verifiedUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(req.FirstName)
	surname := strings.TrimSpace(req.Surname)
	phone := strings.TrimSpace(req.Phone)
	lga := strings.TrimSpace(req.LGA)
	location := strings.TrimSpace(req.Location)
	if firstName == "" || surname == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name, surname and phone required")
	}
	if lga == "" || location == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lga and location required")
	}

	if _, err := s.repo.FindBuyerByUser(ctx, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "buyer profile already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check buyer profile")
	}

	taken, err := s.repo.BuyerPhoneTaken(ctx, phone, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check buyer phone")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
	}

	buyer := &models.Buyer{
		UserID:    userID,
		FirstName: firstName,
		Surname:   surname,
		Email:     user.Email,
		Phone:     phone,
		LGA:       lga,
		Location:  location,
	}
	created, err := s.repo.CreateBuyer(ctx, buyer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create buyer profile")
	}
	return buyerFromModel(created), nil
}

func (s *service) GetBuyer(ctx context.Context, userID uuid.UUID) (*BuyerDTO, error) {
	buyer, err := s.loadBuyer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buyerFromModel(buyer), nil
}

func (s *service) UpdateBuyer(ctx context.Context, userID uuid.UUID, req UpdateBuyerRequest) (*BuyerDTO, error) {
	buyer, err := s.loadBuyer(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		if strings.TrimSpace(*req.FirstName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name cannot be empty")
		}
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.Surname != nil {
		if strings.TrimSpace(*req.Surname) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "surname cannot be empty")
		}
		updates["surname"] = strings.TrimSpace(*req.Surname)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone cannot be empty")
		}
		taken, err := s.repo.BuyerPhoneTaken(ctx, phone, buyer.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check buyer phone")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		}
		updates["phone"] = phone
	}
	if req.LGA != nil {
		if strings.TrimSpace(*req.LGA) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "lga cannot be empty")
		}
		updates["lga"] = strings.TrimSpace(*req.LGA)
	}
	if req.Location != nil {
		if strings.TrimSpace(*req.Location) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location cannot be empty")
		}
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updates provided")
	}

	if err := s.repo.UpdateBuyer(ctx, buyer.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update buyer profile")
	}

	updated, err := s.repo.FindBuyerByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload buyer profile")
	}
	return buyerFromModel(updated), nil
}

func (s *service) verifiedUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if !user.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "email verification required")
	}
	return user, nil
}

func (s *service) loadFarmer(ctx context.Context, userID uuid.UUID) (*models.Farmer, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	farmer, err := s.repo.FindFarmerByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farmer profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer profile")
	}
	return farmer, nil
}

func (s *service) loadBuyer(ctx context.Context, userID uuid.UUID) (*models.Buyer, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	buyer, err := s.repo.FindBuyerByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer profile")
	}
	return buyer, nil
}
