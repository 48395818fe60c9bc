package service

import (
	"errors"
	"fmt"

	"subcycle/internal/models"
	"subcycle/internal/repository"
)

var ErrDefaultCategory = errors.New("cannot delete default category")

// CategoryService provides business logic for categories
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) Create(category *models.Category) (*models.Category, error) {
	category.IsDefault = false
	return s.repo.Create(category)
}

func (s *CategoryService) GetAllPaginated(limit, offset int) ([]models.Category, int64, error) {
	return s.repo.GetAllPaginated(limit, offset)
}

func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	return s.repo.GetByID(id)
}

func (s *CategoryService) Rename(id uint, name string) (*models.Category, error) {
	return s.repo.Rename(id, name)
}

// Delete removes a category after moving its subscriptions to the default category.
func (s *CategoryService) Delete(id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return ErrDefaultCategory
	}
	inUse, err := s.repo.HasSubscriptions(id)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		defaultCat, err := s.repo.GetDefault()
		if err != nil {
			return fmt.Errorf("failed to find default category: %w", err)
		}
		if err := s.repo.ReassignSubscriptions(id, defaultCat.ID); err != nil {
			return fmt.Errorf("failed to reassign subscriptions: %w", err)
		}
	}
	return s.repo.Delete(id)
}

func (s *CategoryService) GetDefault() (*models.Category, error) {
	return s.repo.GetDefault()
}
