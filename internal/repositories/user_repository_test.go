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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "email", "password", "name", "role", "address", "payment_method", "created_at", "updated_at"}

func TestNewUserRepo(t *testing.T) {
	db, _ := newMockDB(t)

	repo := repository.NewUserRepo(db)
	assert.NotNil(t, repo, "NewUserRepo should return a non-nil repository")
}

func TestUserRepository(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	now := time.Now()

	t.Run("CreateUser_Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		user := &models.User{
			Email:    "test@example.com",
			Password: "hashedpassword",
			Name:     "Test User",
			Role:     models.RoleUser,
		}

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.Email, user.Password, user.Name, user.Role).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(userID.String(), now, now))

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateUser_DuplicateEmail", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pq.Error{Code: "23505"})

		// Act
		err := repo.CreateUser(ctx, &models.User{Email: "test@example.com"})

		// Assert
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	})

	t.Run("GetUserByEmail_Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
			WithArgs("test@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(userID.String(), "test@example.com", "hash", "Test User", "admin", addressJSON, "PayPal", now, now))

		// Act
		user, err := repo.GetUserByEmail(ctx, "test@example.com")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
		require.NotNil(t, user.Address)
		assert.Equal(t, "Jane Doe", user.Address.FullName)
		assert.Equal(t, models.PaymentMethodPayPal, user.PaymentMethod)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByID_NoAddressYet", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(userID.String(), "new@example.com", "hash", "New User", "user", nil, nil, now, now))

		// Act
		user, err := repo.GetUserByID(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Nil(t, user.Address)
		assert.Empty(t, user.PaymentMethod)
	})

	t.Run("GetUserByID_NotFound", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs(userID).
			WillReturnError(sql.ErrNoRows)

		// Act
		user, err := repo.GetUserByID(ctx, userID)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, user)
	})

	t.Run("UpdateAddress_Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		address := &models.ShippingAddress{FullName: "Jane Doe", StreetAddress: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "USA"}

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET address = $1")).
			WithArgs(sqlmock.AnyArg(), userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.UpdateAddress(ctx, userID, address)

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateProfile_Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = $1, email = $2, updated_at = NOW() WHERE id = $3")).
			WithArgs("Jane Smith", "jane.smith@example.com", userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.UpdateProfile(ctx, userID, "Jane Smith", "jane.smith@example.com")

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateProfile_DuplicateEmail", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = $1, email = $2")).
			WillReturnError(&pq.Error{Code: "23505"})

		// Act
		err := repo.UpdateProfile(ctx, userID, "Jane Smith", "taken@example.com")

		// Assert
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	})

	t.Run("UpdateProfile_UserMissing", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = $1, email = $2")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := repo.UpdateProfile(ctx, userID, "Jane Smith", "jane.smith@example.com")

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("UpdatePaymentMethod_UserMissing", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET payment_method = $1")).
			WithArgs("Stripe", userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := repo.UpdatePaymentMethod(ctx, userID, models.PaymentMethodStripe)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("UpdatePaymentMethod_DatabaseError", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		dbError := errors.New("deadlock detected")
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET payment_method = $1")).WillReturnError(dbError)

		// Act
		err := repo.UpdatePaymentMethod(ctx, userID, models.PaymentMethodStripe)

		// Assert
		assert.ErrorIs(t, err, dbError)
	})

	t.Run("ListUsers_Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewUserRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
		mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
			WithArgs(10, 10).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(uuid.NewString(), "last@example.com", "hash", "Last", "user", nil, nil, now, now))

		// Act
		users, total, err := repo.ListUsers(ctx, 2, 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 11, total)
		assert.Len(t, users, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
