package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) error
	UpdateAddress(ctx context.Context, id uuid.UUID, address *models.ShippingAddress) error
	UpdatePaymentMethod(ctx context.Context, id uuid.UUID, method models.PaymentMethod) error
	ListUsers(ctx context.Context, page, size int) ([]*models.User, int, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, email, password, name, role, address, payment_method, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}

	var (
		addressJSON   []byte
		paymentMethod sql.NullString
	)

	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Name, &user.Role, &addressJSON, &paymentMethod, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}

	if len(addressJSON) > 0 {
		user.Address = &models.ShippingAddress{}
		if err := json.Unmarshal(addressJSON, user.Address); err != nil {
			return nil, fmt.Errorf("failed to unmarshal address: %w", err)
		}
	}

	user.PaymentMethod = models.PaymentMethod(paymentMethod.String)

	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (email, password, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, user.Email, user.Password, user.Name, user.Role).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}

		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	user, err := scanUser(conn(ctx, r.DB).QueryRowContext(dbCtx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	user, err := scanUser(conn(ctx, r.DB).QueryRowContext(dbCtx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, `UPDATE users SET name = $1, email = $2, updated_at = NOW() WHERE id = $3`, name, email, id)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}

	return expectOneRow(result, err)
}

func (r *userRepository) UpdateAddress(ctx context.Context, id uuid.UUID, address *models.ShippingAddress) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	addressJSON, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("failed to marshal address: %w", err)
	}

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, `UPDATE users SET address = $1, updated_at = NOW() WHERE id = $2`, addressJSON, id)

	return expectOneRow(result, err)
}

func (r *userRepository) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, method models.PaymentMethod) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, `UPDATE users SET payment_method = $1, updated_at = NOW() WHERE id = $2`, string(method), id)

	return expectOneRow(result, err)
}

func (r *userRepository) ListUsers(ctx context.Context, page, size int) ([]*models.User, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int
	if err := conn(ctx, r.DB).QueryRowContext(dbCtx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	offset := (page - 1) * size

	rows, err := conn(ctx, r.DB).QueryContext(dbCtx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}

// expectOneRow maps zero affected rows to sql.ErrNoRows.
func expectOneRow(result sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("failed to execute update: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
