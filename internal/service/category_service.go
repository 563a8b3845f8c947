package service

import (
	"strings"

	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"
)

// CategoryService handles category management.
type CategoryService struct {
	repo  repository.CategoryRepository
	cache *CatalogCache
}

// NewCategoryService creates a category service.
func NewCategoryService(repo repository.CategoryRepository, cache *CatalogCache) *CategoryService {
	return &CategoryService{repo: repo, cache: cache}
}

// CategoryInput is the create/update payload.
type CategoryInput struct {
	Name        string
	Description string
	ImageURL    string
	IsActive    *bool
	SortOrder   int
}

// List lists categories. Storefront callers pass onlyActive.
func (s *CategoryService) List(onlyActive bool) ([]models.Category, error) {
	return s.repo.List(onlyActive)
}

// GetByID fetches a category.
func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// Create creates a category.
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	count, err := s.repo.CountByName(name, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategoryNameExists
	}

	category := models.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		IsActive:    true,
		SortOrder:   input.SortOrder,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	s.cache.InvalidateCategories()
	return &category, nil
}

// Update updates a category.
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	name := strings.TrimSpace(input.Name)
	count, err := s.repo.CountByName(name, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategoryNameExists
	}

	category.Name = name
	category.Description = strings.TrimSpace(input.Description)
	category.ImageURL = strings.TrimSpace(input.ImageURL)
	category.SortOrder = input.SortOrder
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	s.cache.InvalidateCategories()
	s.cache.InvalidateProducts()
	return category, nil
}

// Delete removes an empty category.
func (s *CategoryService) Delete(id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrNotFound
	}

	count, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.cache.InvalidateCategories()
	return nil
}
