package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/services/mocks"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Register(t *testing.T) {
	t.Run("Success - User Created", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)
		reqBody := models.RegisterRequest{Name: "Test User", Email: "test@example.com", Password: "P@ssword123"}
		user := &models.User{ID: uuid.New(), Name: reqBody.Name, Email: reqBody.Email, Password: "hashed", Role: models.RoleUser}

		mockUserService.On("Register", mock.Anything, &reqBody).Return(user, nil).Once()

		body, _ := json.Marshal(reqBody)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Register().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.NotContains(t, rr.Body.String(), "hashed")
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Validation", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", bytes.NewReader([]byte(`{"email":"not-an-email"}`)), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Register().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		resp := decodeAPIResponse(t, rr, nil)
		assert.Equal(t, appErrors.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.Details)
	})

	t.Run("Failure - Duplicate Email", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Register", mock.Anything, mock.Anything).Return(nil, appErrors.DuplicateEntryError("Email already registered")).Once()

		body, _ := json.Marshal(models.RegisterRequest{Name: "Test User", Email: "test@example.com", Password: "P@ssword123"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Register().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestUserHandler_Login(t *testing.T) {
	reqBody := models.LoginRequest{Email: "test@example.com", Password: "P@ssword123"}

	t.Run("Success - Session Cart Handed Over", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Login", mock.Anything, &reqBody, testutils.TestSessionCartID).
			Return(&models.LoginResponse{Success: true, Token: "jwt", ExpiresIn: 86400}, nil).Once()

		body, _ := json.Marshal(reqBody)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Login().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "jwt", got.Token)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid Credentials", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(&models.LoginResponse{Success: false, Message: "Invalid email or password", RemainingTries: 2}, nil).Once()

		body, _ := json.Marshal(reqBody)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Login().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(&models.LoginResponse{Success: false, RetryAfter: 12}, nil).Once()

		body, _ := json.Marshal(reqBody)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Login().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	})
}

func TestUserHandler_Profile(t *testing.T) {
	userID := uuid.New()

	t.Run("Success - Profile Returned", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("GetUserByID", mock.Anything, userID).Return(&models.User{ID: userID, Name: "Test User"}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/users/profile", nil, userID, nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Profile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Unauthorized", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/users/profile", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Profile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("Success - Profile Updated", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)
		update := &models.UpdateProfileRequest{Name: "Jane Smith", Email: "jane.smith@example.com"}

		mockUserService.On("UpdateProfile", mock.Anything, userID, update).
			Return(&models.User{ID: userID, Name: update.Name, Email: update.Email}, nil).Once()

		body, _ := json.Marshal(update)
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/users/profile", bytes.NewReader(body), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.UpdateProfile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.User
		decodeAPIResponse(t, rr, &got)
		assert.Equal(t, "jane.smith@example.com", got.Email)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid Email", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/users/profile", bytes.NewReader([]byte(`{"name":"Jane Smith","email":"not-an-email"}`)), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.UpdateProfile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockUserService.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Email Taken", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("UpdateProfile", mock.Anything, userID, mock.Anything).
			Return(nil, appErrors.DuplicateEntryError("Email already in use")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/users/profile", bytes.NewReader([]byte(`{"name":"Jane Smith","email":"taken@example.com"}`)), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.UpdateProfile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Failure - Unauthorized", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodPut, "/api/v1/users/profile", bytes.NewReader([]byte(`{"name":"Jane Smith","email":"jane@example.com"}`)), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.UpdateProfile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUserHandler_UpdateAddress(t *testing.T) {
	userID := uuid.New()
	address := models.ShippingAddress{
		FullName:      "Jane Buyer",
		StreetAddress: "1 Market Street",
		City:          "Springfield",
		PostalCode:    "12345",
		Country:       "United States",
	}

	t.Run("Success - Address Stored", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("UpdateAddress", mock.Anything, userID, &address).Return(&address, nil).Once()

		body, _ := json.Marshal(address)
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/users/address", bytes.NewReader(body), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.UpdateAddress().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Missing Fields", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/users/address", bytes.NewReader([]byte(`{"city":"X"}`)), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.UpdateAddress().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockUserService.AssertNotCalled(t, "UpdateAddress", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserHandler_UpdatePaymentMethod(t *testing.T) {
	userID := uuid.New()

	t.Run("Success - Method Saved", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("UpdatePaymentMethod", mock.Anything, userID, &models.UpdatePaymentMethodRequest{Type: models.PaymentMethodCashOnDelivery}).Return(nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/users/payment-method", bytes.NewReader([]byte(`{"type":"CashOnDelivery"}`)), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.UpdatePaymentMethod().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Unknown Method", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/users/payment-method", bytes.NewReader([]byte(`{"type":"Bitcoin"}`)), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.UpdatePaymentMethod().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
