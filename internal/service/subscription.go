package service

import (
	"errors"
	"fmt"
	"time"

	"subcycle/internal/models"
	"subcycle/internal/repository"

	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

type SubscriptionService struct {
	repo            *repository.SubscriptionRepository
	categoryService *CategoryService
	renewalService  *RenewalService
	now             func() time.Time
}

func NewSubscriptionService(repo *repository.SubscriptionRepository, categoryService *CategoryService, renewalService *RenewalService) *SubscriptionService {
	return &SubscriptionService{
		repo:            repo,
		categoryService: categoryService,
		renewalService:  renewalService,
		now:             time.Now,
	}
}

// Create validates the billing cycle, assigns the default category when none is
// given and schedules the first renewal.
func (s *SubscriptionService) Create(subscription *models.Subscription) (*models.Subscription, error) {
	if err := subscription.Cycle().Validate(); err != nil {
		return nil, err
	}
	if err := s.resolveCategory(subscription); err != nil {
		return nil, err
	}
	if err := s.renewalService.InitializeRenewal(subscription, s.now()); err != nil {
		return nil, err
	}
	return s.repo.Create(subscription)
}

func (s *SubscriptionService) GetAllPaginated(limit, offset int) ([]models.Subscription, int64, error) {
	return s.repo.GetAllPaginated(limit, offset)
}

func (s *SubscriptionService) GetByID(id uint) (*models.Subscription, error) {
	return s.repo.GetByID(id)
}

// Update stores subscription over the existing row, recalculating renewal fields
// when billing parameters changed.
func (s *SubscriptionService) Update(id uint, subscription *models.Subscription) (*models.Subscription, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := subscription.Cycle().Validate(); err != nil {
		return nil, err
	}
	if err := s.resolveCategory(subscription); err != nil {
		return nil, err
	}
	if err := s.renewalService.RecalculateIfNeeded(existing, subscription, s.now()); err != nil {
		return nil, err
	}
	subscription.CreatedAt = existing.CreatedAt
	return s.repo.Update(id, subscription)
}

func (s *SubscriptionService) Delete(id uint) error {
	return s.repo.Delete(id)
}

func (s *SubscriptionService) Count() int64 {
	return s.repo.Count()
}

func (s *SubscriptionService) resolveCategory(subscription *models.Subscription) error {
	if subscription.CategoryID == 0 {
		category, err := s.categoryService.GetDefault()
		if err != nil {
			return fmt.Errorf("failed to find default category: %w", err)
		}
		subscription.CategoryID = category.ID
		return nil
	}

	if _, err := s.categoryService.GetByID(subscription.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
