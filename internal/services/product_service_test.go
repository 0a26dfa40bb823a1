package services_test

import (
	"context"
	"fmt"
	"testing"

	"stockman/internal/apperror"
	"stockman/internal/models"
	"stockman/internal/repositories"
	"stockman/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func ptr(v float64) *float64 { return &v }

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	expectedProducts := []models.Product{
		{ProductID: 1, ProductName: "Product A", Price: ptr(10.0), Qty: ptr(100)},
		{ProductID: 2, ProductName: "Product B", Price: ptr(20.0), Qty: ptr(50)},
	}
	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	expectedProduct := &models.Product{ProductID: 1, ProductName: "Product A", Price: ptr(10.0), Qty: ptr(100)}
	mockRepo.On("GetByProductID", ctx, int64(1)).Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByProductID", ctx, int64(99)).Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	product, err = service.GetProductByID(ctx, 99)
	assert.Nil(t, product)
	assert.True(t, apperror.Is(err, apperror.NotFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	newProduct := &models.Product{ProductName: "New Product", Price: ptr(0), Qty: ptr(-2)}
	mockRepo.On("Create", ctx, newProduct).Return(nil).Once()
	assert.NoError(t, service.CreateProduct(ctx, newProduct))

	mockRepo.On("Create", ctx, newProduct).Return(fmt.Errorf("database error")).Once()
	err := service.CreateProduct(ctx, newProduct)
	assert.True(t, apperror.Is(err, apperror.StoreUnavailable))

	err = service.CreateProduct(ctx, &models.Product{ProductName: "No price", Qty: ptr(1)})
	assert.True(t, apperror.Is(err, apperror.Validation))
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	updatedProduct := &models.Product{ProductID: 1, ProductName: "Product A Updated", Price: ptr(12.0), Qty: ptr(95)}
	mockRepo.On("Update", ctx, updatedProduct).Return(nil).Once()
	assert.NoError(t, service.UpdateProduct(ctx, updatedProduct))

	missing := &models.Product{ProductID: 99, ProductName: "NonExistent", Price: ptr(1.0), Qty: ptr(1)}
	mockRepo.On("Update", ctx, missing).Return(fmt.Errorf("product with ID 99 not found for update: %w", repositories.ErrNotFound)).Once()
	err := service.UpdateProduct(ctx, missing)
	assert.True(t, apperror.Is(err, apperror.NotFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(ctx, 1))

	mockRepo.On("Delete", ctx, int64(99)).Return(fmt.Errorf("product with ID 99 not found for deletion: %w", repositories.ErrNotFound)).Once()
	err := service.DeleteProduct(ctx, 99)
	assert.True(t, apperror.Is(err, apperror.NotFound))
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "GetAll", mock.Anything)
}
