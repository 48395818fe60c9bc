package service

import (
	"context"
	"time"

	"subcycle/internal/models"
	"subcycle/internal/repository"
)

// SubscriptionServiceInterface defines the contract for subscription operations.
type SubscriptionServiceInterface interface {
	Create(subscription *models.Subscription) (*models.Subscription, error)
	GetAllPaginated(limit, offset int) ([]models.Subscription, int64, error)
	GetByID(id uint) (*models.Subscription, error)
	Update(id uint, subscription *models.Subscription) (*models.Subscription, error)
	Delete(id uint) error
	Count() int64
}

// CategoryServiceInterface defines the contract for category operations.
type CategoryServiceInterface interface {
	Create(category *models.Category) (*models.Category, error)
	GetAllPaginated(limit, offset int) ([]models.Category, int64, error)
	GetByID(id uint) (*models.Category, error)
	Rename(id uint, name string) (*models.Category, error)
	Delete(id uint) error
	GetDefault() (*models.Category, error)
}

// RenewalServiceInterface defines the contract for keeping renewal dates current on create and update.
type RenewalServiceInterface interface {
	InitializeRenewal(sub *models.Subscription, now time.Time) error
	RecalculateIfNeeded(existing, updated *models.Subscription, now time.Time) error
}

// RenewalRunner runs one batch of due renewals.
type RenewalRunner interface {
	ProcessDue(ctx context.Context, now time.Time) (*RenewalReport, error)
}

// Compile-time interface satisfaction checks.
var _ SubscriptionServiceInterface = (*SubscriptionService)(nil)
var _ CategoryServiceInterface = (*CategoryService)(nil)
var _ RenewalServiceInterface = (*RenewalService)(nil)
var _ RenewalRunner = (*RenewalProcessor)(nil)
var _ RenewalNotifier = (*ShoutrrrService)(nil)
var _ RenewalStore = (*repository.SubscriptionRepository)(nil)
