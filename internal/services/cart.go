package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

type CartService interface {
	GetCart(ctx context.Context, owner models.OwnerKey) (*models.Cart, error)
	AddItem(ctx context.Context, owner models.OwnerKey, req *models.AddItemRequest) (*models.CartMutation, error)
	RemoveItem(ctx context.Context, owner models.OwnerKey, productID uuid.UUID) (*models.CartMutation, error)
	AttachSessionCart(ctx context.Context, sessionCartID string, userID uuid.UUID) error
}

type cartService struct {
	repo        repository.CartRepository
	productRepo repository.ProductRepository
	maxRetries  int
}

func NewCartService(repo repository.CartRepository, productRepo repository.ProductRepository, cfg config.Cart) CartService {
	return &cartService{repo: repo, productRepo: productRepo, maxRetries: cfg.MaxRetries}
}

// isCartRace reports a lost optimistic write, either a stale revision or a concurrent create.
func isCartRace(err error) bool {
	return stdErrors.Is(err, repository.ErrRevisionConflict) || stdErrors.Is(err, repository.ErrCartExists)
}

// retry re-runs attempt from a fresh read while it keeps losing races.
func (s *cartService) retry(ctx context.Context, attempt func() (*models.CartMutation, error)) (*models.CartMutation, error) {

	logger := middleware.LoggerFromContext(ctx)

	for i := 0; i <= s.maxRetries; i++ {
		mutation, err := attempt()
		if !isCartRace(err) {
			return mutation, err
		}

		metrics.CartConflict()
		logger.Warn("Cart changed concurrently, retrying", slog.Int("attempt", i+1), slog.Any("error", err))
	}

	return nil, errors.ConflictError("Cart was modified concurrently, please try again")
}

func (s *cartService) GetCart(ctx context.Context, owner models.OwnerKey) (*models.Cart, error) {

	if owner.IsZero() {
		return nil, errors.BadRequestError("Cart session not found")
	}

	cart, err := s.repo.GetCartByOwner(ctx, owner)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Cart not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to get cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) getProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to get product").WithError(err)
	}

	return product, nil
}

func (s *cartService) AddItem(ctx context.Context, owner models.OwnerKey, req *models.AddItemRequest) (*models.CartMutation, error) {

	if owner.IsZero() {
		return nil, errors.BadRequestError("Cart session not found")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	if quantity < 1 {
		return nil, errors.BadRequestError("Quantity must be at least 1")
	}

	return s.retry(ctx, func() (*models.CartMutation, error) {
		return s.addItem(ctx, owner, req.ProductID, quantity)
	})
}

func (s *cartService) addItem(ctx context.Context, owner models.OwnerKey, productID uuid.UUID, quantity int) (*models.CartMutation, error) {

	cart, err := s.repo.GetCartByOwner(ctx, owner)
	isNew := false

	if err != nil {
		if !stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.DatabaseError("Failed to get cart").WithError(err)
		}

		cart = &models.Cart{
			ID:            uuid.New(),
			UserID:        owner.UserID,
			SessionCartID: owner.SessionCartID,
			Items:         []models.LineItem{},
		}
		isNew = true
	}

	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var message string

	if idx := cart.FindItem(product.ID); idx >= 0 {
		newQuantity := cart.Items[idx].Quantity + 1
		if product.Stock < newQuantity {
			return nil, errors.OutOfStockError(product.Name)
		}

		cart.Items[idx].Quantity = newQuantity
		message = product.Name + " is updated in cart successfully."
	} else {
		if product.Stock < quantity {
			return nil, errors.OutOfStockError(product.Name)
		}

		cart.Items = append(cart.Items, models.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Image:     product.FirstImage(),
			Price:     product.Price,
			Quantity:  quantity,
		})
		message = product.Name + " is added to cart successfully."
	}

	if err := s.save(ctx, cart, isNew); err != nil {
		return nil, err
	}

	return &models.CartMutation{Cart: cart, Message: message}, nil
}

func (s *cartService) RemoveItem(ctx context.Context, owner models.OwnerKey, productID uuid.UUID) (*models.CartMutation, error) {

	if owner.IsZero() {
		return nil, errors.BadRequestError("Cart session not found")
	}

	return s.retry(ctx, func() (*models.CartMutation, error) {
		return s.removeItem(ctx, owner, productID)
	})
}

func (s *cartService) removeItem(ctx context.Context, owner models.OwnerKey, productID uuid.UUID) (*models.CartMutation, error) {

	cart, err := s.GetCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, errors.NotInCartError(product.Name)
	}

	var message string

	if cart.Items[idx].Quantity == 1 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		message = product.Name + " is removed from cart successfully."
	} else {
		cart.Items[idx].Quantity--
		message = product.Name + " is updated in cart successfully."
	}

	if err := s.save(ctx, cart, false); err != nil {
		return nil, err
	}

	return &models.CartMutation{Cart: cart, Message: message}, nil
}

// save reprices the cart and writes it as one row. Races come back unwrapped for retry.
func (s *cartService) save(ctx context.Context, cart *models.Cart, isNew bool) error {

	if err := pricing.ValidateItems(cart.Items); err != nil {
		return errors.InternalError("Cart contains an invalid line").WithError(err)
	}

	cart.Prices = pricing.Calculate(cart.Items)

	var err error
	if isNew {
		err = s.repo.CreateCart(ctx, cart)
	} else {
		err = s.repo.UpdateCart(ctx, cart)
	}

	if err != nil {
		if isCartRace(err) {
			return err
		}

		return errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return nil
}

// AttachSessionCart hands the guest cart to the user on login, unless the user already has one.
func (s *cartService) AttachSessionCart(ctx context.Context, sessionCartID string, userID uuid.UUID) error {

	if sessionCartID == "" {
		return nil
	}

	_, err := s.retry(ctx, func() (*models.CartMutation, error) {

		_, err := s.repo.GetCartByOwner(ctx, models.OwnerKey{UserID: &userID})
		if err == nil {
			return nil, nil
		}

		if !stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.DatabaseError("Failed to get cart").WithError(err)
		}

		guest, err := s.repo.GetCartByOwner(ctx, models.OwnerKey{SessionCartID: sessionCartID})
		if err != nil {
			if stdErrors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}

			return nil, errors.DatabaseError("Failed to get cart").WithError(err)
		}

		if err := s.repo.AssignUser(ctx, guest.ID, userID, guest.Revision); err != nil {
			if isCartRace(err) {
				return nil, err
			}

			return nil, errors.DatabaseError("Failed to attach cart").WithError(err)
		}

		return nil, nil
	})

	return err
}
