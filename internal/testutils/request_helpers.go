package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
)

const TestSessionCartID = "test-session-cart"

func newRequest(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := middleware.WithLogger(req.Context(), logger)
	ctx = middleware.WithSessionCart(ctx, TestSessionCartID)

	return req.WithContext(ctx)
}

func withClaims(req *http.Request, userID uuid.UUID, role models.Role) *http.Request {
	claims := &models.Claims{UserID: userID, Email: "test@example.com", Name: "Test User", Role: role}

	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

// CreateTestRequestWithContext builds a request as seen after authentication of a regular user.
func CreateTestRequestWithContext(method, target string, body io.Reader, userID uuid.UUID, pathParams map[string]string) *http.Request {
	return withClaims(newRequest(method, target, body, pathParams), userID, models.RoleUser)
}

func CreateAdminRequest(method, target string, body io.Reader, adminID uuid.UUID, pathParams map[string]string) *http.Request {
	return withClaims(newRequest(method, target, body, pathParams), adminID, models.RoleAdmin)
}

// CreateTestRequestWithoutContext builds a guest request that still carries a session cart token.
func CreateTestRequestWithoutContext(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	return newRequest(method, target, body, pathParams)
}
