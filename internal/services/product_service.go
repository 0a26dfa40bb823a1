package services

import (
	"context"
	"errors"

	"stockman/internal/apperror"
	"stockman/internal/models"
	"stockman/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService handles business logic related to products. It has no HTTP
// routes yet.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: NewValidator(),
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, productStoreError(err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its productID.
func (s *ProductService) GetProductByID(ctx context.Context, productID int64) (*models.Product, error) {
	product, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, productStoreError(err)
	}
	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return validationError(err)
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return productStoreError(err)
	}
	return nil
}

// UpdateProduct validates and saves an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return validationError(err)
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return productStoreError(err)
	}
	return nil
}

// DeleteProduct deletes a product by its productID.
func (s *ProductService) DeleteProduct(ctx context.Context, productID int64) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return productStoreError(err)
	}
	return nil
}

func productStoreError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperror.Wrap(apperror.NotFound, "Product not found", err)
	case errors.Is(err, repositories.ErrDuplicate):
		return apperror.Wrap(apperror.Uniqueness, "Product already exists", err)
	default:
		return apperror.Wrap(apperror.StoreUnavailable, "Product store unavailable", err)
	}
}
