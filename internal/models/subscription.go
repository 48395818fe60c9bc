package models

import (
	"time"

	"subcycle/internal/billing"
)

const (
	StatusActive    = "Active"
	StatusPaused    = "Paused"
	StatusCancelled = "Cancelled"
)

// Subscription is a tracked recurring payment.
//
// PreservedBillingDay is the day-of-month taken from FirstBillingDate. Renewal
// processing reads it but never rewrites it from a clamped renewal date.
type Subscription struct {
	ID                  uint         `gorm:"primaryKey" json:"id"`
	Name                string       `gorm:"not null" json:"name"`
	Cost                float64      `gorm:"not null" json:"cost"`
	Currency            string       `gorm:"default:'USD'" json:"currency"`
	CategoryID          uint         `json:"category_id"`
	Category            Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Status              string       `gorm:"not null;default:'Active';index" json:"status"`
	BillingValue        int          `gorm:"not null;default:1" json:"billing_value"`
	BillingUnit         billing.Unit `gorm:"type:varchar(10);not null;default:'month'" json:"billing_unit"`
	FirstBillingDate    time.Time    `gorm:"not null" json:"first_billing_date"`
	PreservedBillingDay *int         `json:"preserved_billing_day"`
	NextRenewal         *time.Time   `gorm:"index" json:"next_renewal"`
	LastRenewal         *time.Time   `json:"last_renewal"`
	Notes               string       `json:"notes"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

func (s *Subscription) Cycle() billing.Cycle {
	return billing.Cycle{Value: s.BillingValue, Unit: s.BillingUnit}
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// RenewalUpdate is what a completed renewal writes back to a subscription.
type RenewalUpdate struct {
	LastRenewal         time.Time
	NextRenewal         time.Time
	PreservedBillingDay int
}
