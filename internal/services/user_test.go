package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	serviceMocks "github.com/aaravmahajanofficial/storefront/internal/services/mocks"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecurity = config.Security{JWTKey: "test-key", JWTExpiryHours: 24}

func setupUserService() (service.UserService, *mocks.UserRepository, *mocks.RateLimitRepository, *serviceMocks.CartService) {
	mockUserRepo := new(mocks.UserRepository)
	mockRateLimiter := new(mocks.RateLimitRepository)
	mockCarts := new(serviceMocks.CartService)

	return service.NewUserService(mockUserRepo, mockRateLimiter, mockCarts, testSecurity), mockUserRepo, mockRateLimiter, mockCarts
}

func TestUserService_Register(t *testing.T) {
	req := &models.RegisterRequest{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "P@ssword123!",
	}

	t.Run("Success - User Registration", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()

		// the stored password is a hash, so match on the other fields
		mockUserRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == req.Email && u.Role == models.RoleUser
		})).Return(nil).Once()

		// Act
		user, err := userService.Register(t.Context(), req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, req.Name, user.Name)
		assert.Equal(t, req.Email, user.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)))
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("Failure - Duplicate Email", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()

		mockUserRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(repository.ErrDuplicateEmail).Once()

		// Act
		user, err := userService.Register(t.Context(), req)

		// Assert
		assert.Nil(t, user)
		var appErr *appErrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, appErr.Code)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()

		mockUserRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(errors.New("something exploded")).Once()

		// Act
		user, err := userService.Register(t.Context(), req)

		// Assert
		assert.Nil(t, user)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
	})
}

func TestUserService_Login(t *testing.T) {
	password := "P@ssword123!"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	existingUser := func() *models.User {
		return &models.User{
			ID:       uuid.New(),
			Email:    "test@example.com",
			Password: string(hashedPassword),
			Name:     "Test User",
			Role:     models.RoleAdmin,
		}
	}

	t.Run("Success - Valid Credentials Claim Session Cart", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, mockRateLimiter, mockCarts := setupUserService()
		user := existingUser()
		req := &models.LoginRequest{Email: user.Email, Password: password}

		mockRateLimiter.On("CheckLoginRateLimit", mock.Anything, req.Email).Return(&repository.RateLimitResult{Allowed: true, Remaining: 4}, nil).Once()
		mockUserRepo.On("GetUserByEmail", mock.Anything, req.Email).Return(user, nil).Once()
		mockRateLimiter.On("ResetLoginAttempts", mock.Anything, req.Email).Return(nil).Once()
		mockCarts.On("AttachSessionCart", mock.Anything, "session-123", user.ID).Return(nil).Once()

		// Act
		resp, err := userService.Login(t.Context(), req, "session-123")

		// Assert
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, int((24 * time.Hour).Seconds()), resp.ExpiresIn)

		token, err := jwt.ParseWithClaims(resp.Token, &models.Claims{}, func(t *jwt.Token) (any, error) {
			return []byte(testSecurity.JWTKey), nil
		})
		require.NoError(t, err)

		claims, ok := token.Claims.(*models.Claims)
		require.True(t, ok)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Name, claims.Name)
		assert.True(t, claims.IsAdmin())

		mockUserRepo.AssertExpectations(t)
		mockRateLimiter.AssertExpectations(t)
		mockCarts.AssertExpectations(t)
	})

	t.Run("Success - Cart Claim Failure Does Not Block Login", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, mockRateLimiter, mockCarts := setupUserService()
		user := existingUser()
		req := &models.LoginRequest{Email: user.Email, Password: password}

		mockRateLimiter.On("CheckLoginRateLimit", mock.Anything, req.Email).Return(&repository.RateLimitResult{Allowed: true, Remaining: 4}, nil).Once()
		mockUserRepo.On("GetUserByEmail", mock.Anything, req.Email).Return(user, nil).Once()
		mockRateLimiter.On("ResetLoginAttempts", mock.Anything, req.Email).Return(errors.New("redis down")).Once()
		mockCarts.On("AttachSessionCart", mock.Anything, "", user.ID).Return(appErrors.ConflictError("Cart was modified concurrently")).Once()

		// Act
		resp, err := userService.Login(t.Context(), req, "")

		// Assert
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("Failure - Invalid Password", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, mockRateLimiter, mockCarts := setupUserService()
		user := existingUser()
		req := &models.LoginRequest{Email: user.Email, Password: "WrongP@ssword123!"}

		mockRateLimiter.On("CheckLoginRateLimit", mock.Anything, req.Email).Return(&repository.RateLimitResult{Allowed: true, Remaining: 3}, nil).Once()
		mockUserRepo.On("GetUserByEmail", mock.Anything, req.Email).Return(user, nil).Once()

		// Act
		resp, err := userService.Login(t.Context(), req, "session-123")

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 3, resp.RemainingTries)
		assert.Empty(t, resp.Token)
		mockRateLimiter.AssertNotCalled(t, "ResetLoginAttempts", mock.Anything, mock.Anything)
		mockCarts.AssertNotCalled(t, "AttachSessionCart", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, mockRateLimiter, _ := setupUserService()
		req := &models.LoginRequest{Email: "test@example.com", Password: password}

		mockRateLimiter.On("CheckLoginRateLimit", mock.Anything, req.Email).Return(&repository.RateLimitResult{Allowed: false, RetryAfter: 30 * time.Second}, nil).Once()

		// Act
		resp, err := userService.Login(t.Context(), req, "")

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 30, resp.RetryAfter)
		mockUserRepo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	})

	t.Run("Failure - User Not Found", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, mockRateLimiter, _ := setupUserService()
		req := &models.LoginRequest{Email: "ghost@example.com", Password: password}

		mockRateLimiter.On("CheckLoginRateLimit", mock.Anything, req.Email).Return(&repository.RateLimitResult{Allowed: true, Remaining: 5}, nil).Once()
		mockUserRepo.On("GetUserByEmail", mock.Anything, req.Email).Return(nil, sql.ErrNoRows).Once()

		// Act
		resp, err := userService.Login(t.Context(), req, "")

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 5, resp.RemainingTries)
	})

	t.Run("Failure - Rate Limiter Unavailable", func(t *testing.T) {
		// Arrange
		userService, _, mockRateLimiter, _ := setupUserService()
		req := &models.LoginRequest{Email: "test@example.com", Password: password}

		mockRateLimiter.On("CheckLoginRateLimit", mock.Anything, req.Email).Return(nil, errors.New("redis down")).Once()

		// Act
		resp, err := userService.Login(t.Context(), req, "")

		// Assert
		assert.Nil(t, resp)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeThirdPartyError))
	})
}

func TestUserService_GetUserByID(t *testing.T) {
	t.Run("Success - User Found", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()
		userID := uuid.New()
		existing := &models.User{ID: userID, Email: "test@example.com", Name: "Test User"}

		mockUserRepo.On("GetUserByID", mock.Anything, userID).Return(existing, nil).Once()

		// Act
		user, err := userService.GetUserByID(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, existing, user)
	})

	t.Run("Failure - User Not Found", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()
		userID := uuid.New()

		mockUserRepo.On("GetUserByID", mock.Anything, userID).Return(nil, sql.ErrNoRows).Once()

		// Act
		user, err := userService.GetUserByID(t.Context(), userID)

		// Assert
		assert.Nil(t, user)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})
}

func TestUserService_UpdateAddress(t *testing.T) {
	t.Run("Success - Markup Stripped", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()
		userID := uuid.New()
		address := &models.ShippingAddress{
			FullName:      "Jane <script>alert(1)</script>Buyer",
			StreetAddress: "1 <b>Market</b> Street",
			City:          "Springfield",
			PostalCode:    "12345",
			Country:       "United States",
		}

		mockUserRepo.On("UpdateAddress", mock.Anything, userID, mock.MatchedBy(func(a *models.ShippingAddress) bool {
			return a.FullName == "Jane Buyer" && a.StreetAddress == "1 Market Street"
		})).Return(nil).Once()

		// Act
		clean, err := userService.UpdateAddress(t.Context(), userID, address)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Jane Buyer", clean.FullName)
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("Failure - Unknown User", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()
		userID := uuid.New()

		mockUserRepo.On("UpdateAddress", mock.Anything, userID, mock.Anything).Return(sql.ErrNoRows).Once()

		// Act
		_, err := userService.UpdateAddress(t.Context(), userID, &models.ShippingAddress{})

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("Success - Returns Reloaded User", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()
		userID := uuid.New()
		req := &models.UpdateProfileRequest{Name: "Jane <i>Smith</i>", Email: "jane.smith@example.com"}
		updated := &models.User{ID: userID, Name: "Jane Smith", Email: "jane.smith@example.com"}

		mockUserRepo.On("UpdateProfile", mock.Anything, userID, "Jane Smith", "jane.smith@example.com").Return(nil).Once()
		mockUserRepo.On("GetUserByID", mock.Anything, userID).Return(updated, nil).Once()

		// Act
		user, err := userService.UpdateProfile(t.Context(), userID, req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, updated, user)
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("Failure - Email Taken", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()
		userID := uuid.New()

		mockUserRepo.On("UpdateProfile", mock.Anything, userID, mock.Anything, "taken@example.com").Return(repository.ErrDuplicateEmail).Once()

		// Act
		user, err := userService.UpdateProfile(t.Context(), userID, &models.UpdateProfileRequest{Name: "Jane", Email: "taken@example.com"})

		// Assert
		assert.Nil(t, user)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDuplicateEntry))
		mockUserRepo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Unknown User", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()
		userID := uuid.New()

		mockUserRepo.On("UpdateProfile", mock.Anything, userID, mock.Anything, mock.Anything).Return(sql.ErrNoRows).Once()

		// Act
		user, err := userService.UpdateProfile(t.Context(), userID, &models.UpdateProfileRequest{Name: "Jane", Email: "jane@example.com"})

		// Assert
		assert.Nil(t, user)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})
}

func TestUserService_UpdatePaymentMethod(t *testing.T) {
	t.Run("Success - Stripe Selected", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()
		userID := uuid.New()

		mockUserRepo.On("UpdatePaymentMethod", mock.Anything, userID, models.PaymentMethodStripe).Return(nil).Once()

		// Act
		err := userService.UpdatePaymentMethod(t.Context(), userID, &models.UpdatePaymentMethodRequest{Type: models.PaymentMethodStripe})

		// Assert
		require.NoError(t, err)
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("Failure - Unsupported Method", func(t *testing.T) {
		// Arrange
		userService, mockUserRepo, _, _ := setupUserService()

		// Act
		err := userService.UpdatePaymentMethod(context.Background(), uuid.New(), &models.UpdatePaymentMethodRequest{Type: "Bitcoin"})

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
		mockUserRepo.AssertNotCalled(t, "UpdatePaymentMethod", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	// Arrange
	userService, mockUserRepo, _, _ := setupUserService()
	users := []*models.User{{ID: uuid.New(), Name: "Test User"}}

	mockUserRepo.On("ListUsers", mock.Anything, 1, 10).Return(users, 1, nil).Once()

	// Act
	result, total, err := userService.ListUsers(t.Context(), 1, 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, users, result)
	assert.Equal(t, 1, total)
}
