package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return db, mock
}

var cartRowColumns = []string{"id", "user_id", "session_cart_id", "items", "items_price", "shipping_price", "tax_price", "total_price", "revision", "created_at", "updated_at"}

func TestNewCartRepo(t *testing.T) {
	db, _ := newMockDB(t)

	repo := repository.NewCartRepo(db)
	assert.NotNil(t, repo, "NewCartRepo should return a non-nil repository")
}

func TestCartRepository_GetCartByOwner(t *testing.T) {
	ctx := t.Context()
	cartID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()
	now := time.Now()
	itemsJSON := []byte(`[{"product_id":"` + productID.String() + `","name":"Polo","slug":"polo","image":"/p.jpg","price":"60.00","quantity":2}]`)

	t.Run("Success - By User ID", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		rows := sqlmock.NewRows(cartRowColumns).
			AddRow(cartID.String(), userID.String(), "session-1", itemsJSON, "120.00", "0.00", "18.00", "138.00", int64(4), now, now)
		mock.ExpectQuery(regexp.QuoteMeta("FROM carts WHERE user_id = $1")).
			WithArgs(userID).
			WillReturnRows(rows)

		// Act
		cart, err := repo.GetCartByOwner(ctx, models.OwnerKey{UserID: &userID, SessionCartID: "session-1"})

		// Assert
		require.NoError(t, err)
		require.NotNil(t, cart)
		assert.Equal(t, cartID, cart.ID)
		require.NotNil(t, cart.UserID)
		assert.Equal(t, userID, *cart.UserID)
		assert.Equal(t, int64(4), cart.Revision)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, productID, cart.Items[0].ProductID)
		assert.True(t, cart.Items[0].Price.Equal(decimal.NewFromInt(60)))
		assert.Equal(t, "138.00", cart.Prices.TotalPrice.StringFixed(2))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Guest By Session Token", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		rows := sqlmock.NewRows(cartRowColumns).
			AddRow(cartID.String(), nil, "guest-token", []byte(`[]`), "0", "0", "0", "0", int64(1), now, now)
		mock.ExpectQuery(regexp.QuoteMeta("FROM carts WHERE session_cart_id = $1 AND user_id IS NULL")).
			WithArgs("guest-token").
			WillReturnRows(rows)

		// Act
		cart, err := repo.GetCartByOwner(ctx, models.OwnerKey{SessionCartID: "guest-token"})

		// Assert
		require.NoError(t, err)
		assert.Nil(t, cart.UserID)
		assert.Empty(t, cart.Items)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM carts WHERE user_id = $1")).
			WithArgs(userID).
			WillReturnError(sql.ErrNoRows)

		// Act
		cart, err := repo.GetCartByOwner(ctx, models.OwnerKey{UserID: &userID})

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, cart)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Unmarshal Error", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		rows := sqlmock.NewRows(cartRowColumns).
			AddRow(cartID.String(), userID.String(), "", []byte(`{"invalid"`), "0", "0", "0", "0", int64(1), now, now)
		mock.ExpectQuery(regexp.QuoteMeta("FROM carts WHERE user_id = $1")).
			WithArgs(userID).
			WillReturnRows(rows)

		// Act
		cart, err := repo.GetCartByOwner(ctx, models.OwnerKey{UserID: &userID})

		// Assert
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to unmarshal cart items")
		assert.Nil(t, cart)
	})
}

func TestCartRepository_CreateCart(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		cart := &models.Cart{ID: uuid.New(), SessionCartID: "guest-token"}

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO carts")).
			WithArgs(cart.ID, nil, "guest-token", []byte(`[]`), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"revision", "created_at", "updated_at"}).AddRow(int64(1), now, now))

		// Act
		err := repo.CreateCart(ctx, cart)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(1), cart.Revision)
		assert.WithinDuration(t, now, cart.CreatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Owner Already Has Cart", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		userID := uuid.New()
		cart := &models.Cart{ID: uuid.New(), UserID: &userID}

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO carts")).
			WillReturnError(&pq.Error{Code: "23505"})

		// Act
		err := repo.CreateCart(ctx, cart)

		// Assert
		assert.ErrorIs(t, err, repository.ErrCartExists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		dbError := errors.New("database insertion error")
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO carts")).WillReturnError(dbError)

		// Act
		err := repo.CreateCart(ctx, &models.Cart{ID: uuid.New(), SessionCartID: "x"})

		// Assert
		assert.ErrorIs(t, err, dbError)
		assert.NotErrorIs(t, err, repository.ErrCartExists)
	})
}

func TestCartRepository_UpdateCart(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	t.Run("Success - Revision Advances", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		cart := &models.Cart{ID: uuid.New(), Revision: 3, Items: []models.LineItem{}}

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE carts SET items = $1")).
			WithArgs([]byte(`[]`), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), cart.ID, int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"revision", "updated_at"}).AddRow(int64(4), now))

		// Act
		err := repo.UpdateCart(ctx, cart)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(4), cart.Revision)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Stale Revision", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		cart := &models.Cart{ID: uuid.New(), Revision: 3}

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $6 AND revision = $7")).
			WillReturnRows(sqlmock.NewRows([]string{"revision", "updated_at"}))

		// Act
		err := repo.UpdateCart(ctx, cart)

		// Assert
		assert.ErrorIs(t, err, repository.ErrRevisionConflict)
		assert.Equal(t, int64(3), cart.Revision)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartRepository_ClearCart(t *testing.T) {
	ctx := t.Context()
	cartID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET items = '[]', items_price = 0")).
			WithArgs(cartID, int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.ClearCart(ctx, cartID, 2)

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Cart Changed Since Snapshot", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET items = '[]'")).
			WithArgs(cartID, int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := repo.ClearCart(ctx, cartID, 2)

		// Assert
		assert.ErrorIs(t, err, repository.ErrRevisionConflict)
	})
}

func TestCartRepository_AssignUser(t *testing.T) {
	ctx := t.Context()
	cartID := uuid.New()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET user_id = $1")).
			WithArgs(userID, cartID, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.AssignUser(ctx, cartID, userID, 5)

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - User Already Owns A Cart", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewCartRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET user_id = $1")).
			WillReturnError(&pq.Error{Code: "23505"})

		// Act
		err := repo.AssignUser(ctx, cartID, userID, 5)

		// Assert
		assert.ErrorIs(t, err, repository.ErrCartExists)
	})
}
