package service_test

import (
	"database/sql"
	"errors"
	"testing"

	cacheMocks "github.com/aaravmahajanofficial/storefront/internal/cache/mocks"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetProductBySlug(t *testing.T) {
	slug := "polo-sporting-stretch-shirt"
	key := "product:slug:" + slug

	t.Run("Success - Served From Cache", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		mockCache := new(cacheMocks.Cache)
		productService := service.NewProductService(mockRepo, mockCache)
		cached := testProduct(4)

		mockCache.On("Get", mock.Anything, key, mock.AnythingOfType("*models.Product")).Run(func(args mock.Arguments) {
			*args.Get(2).(*models.Product) = *cached
		}).Return(true, nil).Once()

		// Act
		product, err := productService.GetProductBySlug(t.Context(), slug)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, cached.ID, product.ID)
		mockRepo.AssertNotCalled(t, "GetProductBySlug", mock.Anything, mock.Anything)
		mockCache.AssertExpectations(t)
	})

	t.Run("Success - Cache Miss Loads And Fills", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		mockCache := new(cacheMocks.Cache)
		productService := service.NewProductService(mockRepo, mockCache)
		stored := testProduct(4)

		mockCache.On("Get", mock.Anything, key, mock.Anything).Return(false, nil).Once()
		mockRepo.On("GetProductBySlug", mock.Anything, slug).Return(stored, nil).Once()
		mockCache.On("Set", mock.Anything, key, stored, mock.Anything).Return(nil).Once()

		// Act
		product, err := productService.GetProductBySlug(t.Context(), slug)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, stored, product)
		mockRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Success - Cache Outage Falls Through", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		mockCache := new(cacheMocks.Cache)
		productService := service.NewProductService(mockRepo, mockCache)
		stored := testProduct(4)

		mockCache.On("Get", mock.Anything, key, mock.Anything).Return(false, errors.New("dial tcp: connection refused")).Once()
		mockRepo.On("GetProductBySlug", mock.Anything, slug).Return(stored, nil).Once()
		mockCache.On("Set", mock.Anything, key, stored, mock.Anything).Return(errors.New("dial tcp: connection refused")).Once()

		// Act
		product, err := productService.GetProductBySlug(t.Context(), slug)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, stored, product)
	})

	t.Run("Failure - Product Not Found", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		mockCache := new(cacheMocks.Cache)
		productService := service.NewProductService(mockRepo, mockCache)

		mockCache.On("Get", mock.Anything, key, mock.Anything).Return(false, nil).Once()
		mockRepo.On("GetProductBySlug", mock.Anything, slug).Return(nil, sql.ErrNoRows).Once()

		// Act
		product, err := productService.GetProductBySlug(t.Context(), slug)

		// Assert
		assert.Nil(t, product)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProductService_GetLatestProducts(t *testing.T) {
	t.Run("Success - Loads Eight Newest On Miss", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		mockCache := new(cacheMocks.Cache)
		productService := service.NewProductService(mockRepo, mockCache)
		latest := []*models.Product{testProduct(1), testProduct(2)}

		mockCache.On("Get", mock.Anything, "products:latest", mock.Anything).Return(false, nil).Once()
		mockRepo.On("ListLatestProducts", mock.Anything, service.LatestProductsLimit).Return(latest, nil).Once()
		mockCache.On("Set", mock.Anything, "products:latest", latest, mock.Anything).Return(nil).Once()

		// Act
		products, err := productService.GetLatestProducts(t.Context())

		// Assert
		require.NoError(t, err)
		assert.Len(t, products, 2)
		assert.Equal(t, 8, service.LatestProductsLimit)
		mockRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		mockCache := new(cacheMocks.Cache)
		productService := service.NewProductService(mockRepo, mockCache)

		mockCache.On("Get", mock.Anything, "products:latest", mock.Anything).Return(false, nil).Once()
		mockRepo.On("ListLatestProducts", mock.Anything, service.LatestProductsLimit).Return(nil, errors.New("timeout")).Once()

		// Act
		products, err := productService.GetLatestProducts(t.Context())

		// Assert
		assert.Nil(t, products)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
	})
}

func TestProductService_ListProducts(t *testing.T) {
	t.Run("Success - Filter Passed Through", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		productService := service.NewProductService(mockRepo, new(cacheMocks.Cache))
		filter := models.ProductFilter{Query: "polo", Category: "Shirts", Page: 1, Size: 10}
		found := []*models.Product{testProduct(3)}

		mockRepo.On("ListProducts", mock.Anything, filter).Return(found, 1, nil).Once()

		// Act
		products, total, err := productService.ListProducts(t.Context(), filter)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, found, products)
		assert.Equal(t, 1, total)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		productService := service.NewProductService(mockRepo, new(cacheMocks.Cache))

		mockRepo.On("ListProducts", mock.Anything, mock.Anything).Return(nil, 0, errors.New("timeout")).Once()

		// Act
		products, total, err := productService.ListProducts(t.Context(), models.ProductFilter{Page: 1, Size: 10})

		// Assert
		assert.Nil(t, products)
		assert.Zero(t, total)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	t.Run("Success - Cache Evicted", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		mockCache := new(cacheMocks.Cache)
		productService := service.NewProductService(mockRepo, mockCache)
		product := testProduct(3)

		mockRepo.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		mockRepo.On("DeleteProduct", mock.Anything, product.ID).Return(nil).Once()
		mockCache.On("Delete", mock.Anything, "product:slug:"+product.Slug, "products:latest").Return(nil).Once()

		// Act
		err := productService.DeleteProduct(t.Context(), product.ID)

		// Assert
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Success - Cache Outage Does Not Fail Delete", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		mockCache := new(cacheMocks.Cache)
		productService := service.NewProductService(mockRepo, mockCache)
		product := testProduct(3)

		mockRepo.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		mockRepo.On("DeleteProduct", mock.Anything, product.ID).Return(nil).Once()
		mockCache.On("Delete", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

		// Act
		err := productService.DeleteProduct(t.Context(), product.ID)

		// Assert
		require.NoError(t, err)
	})

	t.Run("Failure - Referenced By Orders", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		mockCache := new(cacheMocks.Cache)
		productService := service.NewProductService(mockRepo, mockCache)
		product := testProduct(3)

		mockRepo.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		mockRepo.On("DeleteProduct", mock.Anything, product.ID).Return(repository.ErrProductInUse).Once()

		// Act
		err := productService.DeleteProduct(t.Context(), product.ID)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeConflict))
		mockCache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Product Not Found", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.ProductRepository)
		productService := service.NewProductService(mockRepo, new(cacheMocks.Cache))
		productID := uuid.New()

		mockRepo.On("GetProductByID", mock.Anything, productID).Return(nil, sql.ErrNoRows).Once()

		// Act
		err := productService.DeleteProduct(t.Context(), productID)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
		mockRepo.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
	})
}
