package repository

import (
	"context"
	"errors"
	"time"

	"subcycle/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleRenewal means the subscription's next renewal changed after it was read.
var ErrStaleRenewal = errors.New("subscription renewal state changed concurrently")

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(subscription *models.Subscription) (*models.Subscription, error) {
	if err := r.db.Omit(clause.Associations).Create(subscription).Error; err != nil {
		return nil, err
	}
	return r.GetByID(subscription.ID)
}

// GetAllPaginated returns subscriptions ordered by upcoming renewal, and the total count.
func (r *SubscriptionRepository) GetAllPaginated(limit, offset int) ([]models.Subscription, int64, error) {
	var total int64
	if err := r.db.Model(&models.Subscription{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subscriptions []models.Subscription
	err := r.db.Preload("Category").
		Order("next_renewal IS NULL, next_renewal ASC, id ASC").
		Limit(limit).Offset(offset).
		Find(&subscriptions).Error
	if err != nil {
		return nil, 0, err
	}
	return subscriptions, total, nil
}

func (r *SubscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := r.db.Preload("Category").First(&subscription, id).Error; err != nil {
		return nil, err
	}
	return &subscription, nil
}

// Update writes every column of subscription, including nil renewal dates.
func (r *SubscriptionRepository) Update(id uint, subscription *models.Subscription) (*models.Subscription, error) {
	subscription.ID = id
	if err := r.db.Omit(clause.Associations).Save(subscription).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *SubscriptionRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Subscription{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SubscriptionRepository) Count() int64 {
	var count int64
	r.db.Model(&models.Subscription{}).Count(&count)
	return count
}

// GetDueForRenewal returns active subscriptions whose next renewal is on or before cutoff.
func (r *SubscriptionRepository) GetDueForRenewal(ctx context.Context, cutoff time.Time) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_renewal IS NOT NULL AND next_renewal <= ?", models.StatusActive, cutoff.UTC()).
		Order("next_renewal ASC, id ASC").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

// ApplyRenewal stores a completed renewal. The row is only written while its
// next_renewal still equals expectedNext; otherwise ErrStaleRenewal is returned.
func (r *SubscriptionRepository) ApplyRenewal(ctx context.Context, id uint, expectedNext time.Time, update models.RenewalUpdate) error {
	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND next_renewal = ?", id, expectedNext).
		Updates(map[string]any{
			"last_renewal":          update.LastRenewal,
			"next_renewal":          update.NextRenewal,
			"preserved_billing_day": update.PreservedBillingDay,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRenewal
	}
	return nil
}
