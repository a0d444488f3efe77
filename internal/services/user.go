package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest, sessionCartID string) (*models.LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, address *models.ShippingAddress) (*models.ShippingAddress, error)
	UpdatePaymentMethod(ctx context.Context, id uuid.UUID, req *models.UpdatePaymentMethodRequest) error
	UpdateProfile(ctx context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context, page, size int) ([]*models.User, int, error)
}

type userService struct {
	repo        repository.UserRepository
	rateLimiter repository.RateLimitRepository
	carts       CartService
	jwtKey      []byte
	tokenTTL    time.Duration
	sanitizer   *bluemonday.Policy
}

func NewUserService(repo repository.UserRepository, rateLimiter repository.RateLimitRepository, carts CartService, cfg config.Security) UserService {
	return &userService{
		repo:        repo,
		rateLimiter: rateLimiter,
		carts:       carts,
		jwtKey:      []byte(cfg.JWTKey),
		tokenTTL:    time.Duration(cfg.JWTExpiryHours) * time.Hour,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if stdErrors.Is(err, repository.ErrDuplicateEmail) {
			return nil, errors.DuplicateEntryError("Email already registered").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to create user").WithError(err)
	}

	return user, nil
}

// Login issues a token and hands any guest cart held by sessionCartID to the user.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest, sessionCartID string) (*models.LoginResponse, error) {

	logger := middleware.LoggerFromContext(ctx)

	limit, err := s.rateLimiter.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, errors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !limit.Allowed {
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: int(limit.RetryAfter.Seconds()),
		}, nil
	}

	// Retrieve the user from the DB and compare the passwords
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid email or password",
			RemainingTries: limit.Remaining,
		}, nil
	}

	now := time.Now()
	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID.String(),
		},
	}

	// Generate Token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	if err := s.rateLimiter.ResetLoginAttempts(ctx, req.Email); err != nil {
		logger.Warn("Failed to reset login attempts", slog.String("email", req.Email), slog.Any("error", err))
	}

	if err := s.carts.AttachSessionCart(ctx, sessionCartID, user.ID); err != nil {
		logger.Warn("Failed to attach session cart", slog.String("userId", user.ID.String()), slog.Any("error", err))
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     tokenString,
		ExpiresIn: int(s.tokenTTL.Seconds()),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("User not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to get user").WithError(err)
	}

	return user, nil
}

// UpdateAddress strips any markup from the address before storing it.
func (s *userService) UpdateAddress(ctx context.Context, id uuid.UUID, address *models.ShippingAddress) (*models.ShippingAddress, error) {

	clean := &models.ShippingAddress{
		FullName:      s.sanitizer.Sanitize(address.FullName),
		StreetAddress: s.sanitizer.Sanitize(address.StreetAddress),
		City:          s.sanitizer.Sanitize(address.City),
		PostalCode:    s.sanitizer.Sanitize(address.PostalCode),
		Country:       s.sanitizer.Sanitize(address.Country),
	}

	if err := s.repo.UpdateAddress(ctx, id, clean); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("User not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to update address").WithError(err)
	}

	return clean, nil
}

func (s *userService) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, req *models.UpdatePaymentMethodRequest) error {

	if !req.Type.Valid() {
		return errors.ValidationError("Unsupported payment method")
	}

	if err := s.repo.UpdatePaymentMethod(ctx, id, req.Type); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("User not found").WithError(err)
		}

		return errors.DatabaseError("Failed to update payment method").WithError(err)
	}

	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {

	if err := s.repo.UpdateProfile(ctx, id, s.sanitizer.Sanitize(req.Name), req.Email); err != nil {
		switch {
		case stdErrors.Is(err, repository.ErrDuplicateEmail):
			return nil, errors.DuplicateEntryError("Email already in use").WithError(err)
		case stdErrors.Is(err, sql.ErrNoRows):
			return nil, errors.NotFoundError("User not found").WithError(err)
		default:
			return nil, errors.DatabaseError("Failed to update profile").WithError(err)
		}
	}

	return s.GetUserByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context, page, size int) ([]*models.User, int, error) {

	users, total, err := s.repo.ListUsers(ctx, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch users").WithError(err)
	}

	return users, total, nil
}
