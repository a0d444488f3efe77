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

// CartRepository persists whole cart rows. Every write after creation is conditional on
// the revision the caller read.
type CartRepository interface {
	GetCartByOwner(ctx context.Context, owner models.OwnerKey) (*models.Cart, error)
	CreateCart(ctx context.Context, cart *models.Cart) error
	UpdateCart(ctx context.Context, cart *models.Cart) error
	ClearCart(ctx context.Context, cartID uuid.UUID, expectedRevision int64) error
	AssignUser(ctx context.Context, cartID uuid.UUID, userID uuid.UUID, expectedRevision int64) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

const cartColumns = `id, user_id, session_cart_id, items, items_price, shipping_price, tax_price, total_price, revision, created_at, updated_at`

// GetCartByOwner looks up by user id when present, else by the guest session token.
// A missing cart is reported as sql.ErrNoRows.
func (r *cartRepository) GetCartByOwner(ctx context.Context, owner models.OwnerKey) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var row *sql.Row

	if owner.UserID != nil {
		row = conn(ctx, r.DB).QueryRowContext(dbCtx, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, *owner.UserID)
	} else {
		row = conn(ctx, r.DB).QueryRowContext(dbCtx, `SELECT `+cartColumns+` FROM carts WHERE session_cart_id = $1 AND user_id IS NULL`, owner.SessionCartID)
	}

	cart := &models.Cart{}

	var itemsJSON []byte

	err := row.Scan(&cart.ID, &cart.UserID, &cart.SessionCartID, &itemsJSON,
		&cart.Prices.ItemsPrice, &cart.Prices.ShippingPrice, &cart.Prices.TaxPrice, &cart.Prices.TotalPrice,
		&cart.Revision, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	return cart, nil
}

// CreateCart inserts a new cart at revision 1. Losing a race for the same owner yields
// ErrCartExists.
func (r *cartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := marshalItems(cart.Items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO carts (id, user_id, session_cart_id, items, items_price, shipping_price, tax_price, total_price, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, NOW(), NOW())
		RETURNING revision, created_at, updated_at
	`

	err = conn(ctx, r.DB).QueryRowContext(dbCtx, query, cart.ID, cart.UserID, cart.SessionCartID, itemsJSON,
		cart.Prices.ItemsPrice, cart.Prices.ShippingPrice, cart.Prices.TaxPrice, cart.Prices.TotalPrice).
		Scan(&cart.Revision, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCartExists
		}

		return fmt.Errorf("failed to insert cart: %w", err)
	}

	return nil
}

// UpdateCart writes items and prices in one statement, only if cart.Revision is still
// current. On success cart.Revision holds the new value.
func (r *cartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := marshalItems(cart.Items)
	if err != nil {
		return err
	}

	query := `
		UPDATE carts SET items = $1, items_price = $2, shipping_price = $3, tax_price = $4, total_price = $5,
			revision = revision + 1, updated_at = NOW()
		WHERE id = $6 AND revision = $7
		RETURNING revision, updated_at
	`

	err = conn(ctx, r.DB).QueryRowContext(dbCtx, query, itemsJSON,
		cart.Prices.ItemsPrice, cart.Prices.ShippingPrice, cart.Prices.TaxPrice, cart.Prices.TotalPrice,
		cart.ID, cart.Revision).Scan(&cart.Revision, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRevisionConflict
		}

		return fmt.Errorf("failed to update the cart: %w", err)
	}

	return nil
}

// ClearCart empties the cart and zeroes its prices, conditional on expectedRevision.
func (r *cartRepository) ClearCart(ctx context.Context, cartID uuid.UUID, expectedRevision int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE carts SET items = '[]', items_price = 0, shipping_price = 0, tax_price = 0, total_price = 0,
			revision = revision + 1, updated_at = NOW()
		WHERE id = $1 AND revision = $2
	`

	return execConditional(conn(ctx, r.DB).ExecContext(dbCtx, query, cartID, expectedRevision))
}

// AssignUser hands a guest cart to a user.
func (r *cartRepository) AssignUser(ctx context.Context, cartID uuid.UUID, userID uuid.UUID, expectedRevision int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE carts SET user_id = $1, revision = revision + 1, updated_at = NOW()
		WHERE id = $2 AND revision = $3 AND user_id IS NULL
	`

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, query, userID, cartID, expectedRevision)
	if err != nil && isUniqueViolation(err) {
		return ErrCartExists
	}

	return execConditional(result, err)
}

func execConditional(result sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("failed to update the cart: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return ErrRevisionConflict
	}

	return nil
}

func marshalItems(items []models.LineItem) ([]byte, error) {
	if items == nil {
		items = []models.LineItem{}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart items: %w", err)
	}

	return itemsJSON, nil
}
