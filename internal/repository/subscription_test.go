package repository

import (
	"context"
	"testing"
	"time"

	"subcycle/internal/billing"
	"subcycle/internal/database"
	"subcycle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func insert(t *testing.T, repo *SubscriptionRepository, name, status string, next *time.Time) *models.Subscription {
	preserved := 31
	sub, err := repo.Create(&models.Subscription{
		Name:                name,
		Cost:                5,
		Status:              status,
		BillingValue:        1,
		BillingUnit:         billing.UnitMonth,
		FirstBillingDate:    day(2024, 1, 31),
		PreservedBillingDay: &preserved,
		NextRenewal:         next,
	})
	require.NoError(t, err)
	return sub
}

func TestSubscriptionRepository_GetDueForRenewal(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))

	later := day(2024, 4, 30)
	today := day(2024, 3, 31)
	earlier := day(2024, 2, 29)

	insert(t, repo, "later", models.StatusActive, &later)
	insert(t, repo, "today", models.StatusActive, &today)
	insert(t, repo, "earlier", models.StatusActive, &earlier)
	insert(t, repo, "paused", models.StatusPaused, &earlier)
	insert(t, repo, "unscheduled", models.StatusActive, nil)

	due, err := repo.GetDueForRenewal(context.Background(), time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)

	var names []string
	for _, sub := range due {
		names = append(names, sub.Name)
	}
	assert.Equal(t, []string{"earlier", "today"}, names)
}

func TestSubscriptionRepository_ApplyRenewal(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))
	ctx := context.Background()

	next := day(2024, 3, 31)
	sub := insert(t, repo, "Gym", models.StatusActive, &next)

	update := models.RenewalUpdate{
		LastRenewal:         day(2024, 3, 31),
		NextRenewal:         day(2024, 4, 30),
		PreservedBillingDay: 31,
	}
	require.NoError(t, repo.ApplyRenewal(ctx, sub.ID, next, update))

	stored, err := repo.GetByID(sub.ID)
	require.NoError(t, err)
	assert.True(t, stored.NextRenewal.Equal(day(2024, 4, 30)))
	assert.True(t, stored.LastRenewal.Equal(day(2024, 3, 31)))
	assert.Equal(t, 31, *stored.PreservedBillingDay)

	// Same expected date again: the row has already moved on.
	err = repo.ApplyRenewal(ctx, sub.ID, next, update)
	assert.ErrorIs(t, err, ErrStaleRenewal)

	err = repo.ApplyRenewal(ctx, 999, next, update)
	assert.ErrorIs(t, err, ErrStaleRenewal)
}

func TestSubscriptionRepository_GetAllPaginatedOrdersByRenewal(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))

	later := day(2024, 5, 31)
	sooner := day(2024, 4, 30)
	insert(t, repo, "unscheduled", models.StatusCancelled, nil)
	insert(t, repo, "later", models.StatusActive, &later)
	insert(t, repo, "sooner", models.StatusActive, &sooner)

	subs, total, err := repo.GetAllPaginated(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, subs, 3)
	assert.Equal(t, "sooner", subs[0].Name)
	assert.Equal(t, "later", subs[1].Name)
	assert.Equal(t, "unscheduled", subs[2].Name)
}

func TestSubscriptionRepository_Delete(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))
	sub := insert(t, repo, "Gym", models.StatusActive, nil)

	require.NoError(t, repo.Delete(sub.ID))
	assert.ErrorIs(t, repo.Delete(sub.ID), gorm.ErrRecordNotFound)
	assert.Equal(t, int64(0), repo.Count())
}
