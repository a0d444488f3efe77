package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

// LatestProductsLimit is how many products the storefront home page lists.
const LatestProductsLimit = 8

type ProductService interface {
	GetLatestProducts(ctx context.Context) ([]*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo  repository.ProductRepository
	cache cache.Cache
}

func NewProductService(repo repository.ProductRepository, cache cache.Cache) ProductService {
	return &productService{repo: repo, cache: cache}
}

// Cache failures are logged and fall through to the database.
func (s *productService) GetLatestProducts(ctx context.Context) ([]*models.Product, error) {

	logger := middleware.LoggerFromContext(ctx)

	var products []*models.Product

	found, err := s.cache.Get(ctx, cache.LatestProductsKey, &products)
	if err != nil {
		logger.Warn("Failed to read latest products from cache", slog.Any("error", err))
	}

	if found {
		return products, nil
	}

	products, err = s.repo.ListLatestProducts(ctx, LatestProductsLimit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	if err := s.cache.Set(ctx, cache.LatestProductsKey, products, 0); err != nil {
		logger.Warn("Failed to cache latest products", slog.Any("error", err))
	}

	return products, nil
}

func (s *productService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {

	logger := middleware.LoggerFromContext(ctx)
	key := cache.ProductSlugKey(slug)

	var product models.Product

	found, err := s.cache.Get(ctx, key, &product)
	if err != nil {
		logger.Warn("Failed to read product from cache", slog.String("slug", slug), slog.Any("error", err))
	}

	if found {
		return &product, nil
	}

	fetched, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to get product").WithError(err)
	}

	if err := s.cache.Set(ctx, key, fetched, 0); err != nil {
		logger.Warn("Failed to cache product", slog.String("slug", slug), slog.Any("error", err))
	}

	return fetched, nil
}

func (s *productService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

// DeleteProduct refuses products that placed orders still reference.
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Product not found").WithError(err)
		}

		return errors.DatabaseError("Failed to get product").WithError(err)
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		switch {
		case stdErrors.Is(err, repository.ErrProductInUse):
			return errors.ConflictError("Product is referenced by existing orders").WithError(err)
		case stdErrors.Is(err, sql.ErrNoRows):
			return errors.NotFoundError("Product not found").WithError(err)
		default:
			return errors.DatabaseError("Failed to delete product").WithError(err)
		}
	}

	if err := s.cache.Delete(ctx, cache.ProductSlugKey(product.Slug), cache.LatestProductsKey); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to evict deleted product from cache",
			slog.String("productId", id.String()),
			slog.Any("error", err),
		)
	}

	return nil
}
