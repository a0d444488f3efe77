package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

// requireClaims answers 401 when the request was not authenticated.
func requireClaims(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*models.Claims, bool) {

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		logger.Warn("Unauthorized access attempt: missing user claims")
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, false
	}

	return claims, true
}

// cartOwner addresses the signed in user's cart, or the session cart for guests.
func cartOwner(r *http.Request) models.OwnerKey {

	owner := models.OwnerKey{SessionCartID: middleware.SessionCartFromContext(r.Context())}

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		userID := claims.UserID
		owner.UserID = &userID
	}

	return owner
}
