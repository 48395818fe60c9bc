package service

import (
	"time"

	"subcycle/internal/billing"
	"subcycle/internal/models"
)

// RenewalService keeps a subscription's preserved billing day and next renewal date
// in step with its billing parameters. It holds no state.
type RenewalService struct{}

func NewRenewalService() *RenewalService {
	return &RenewalService{}
}

// InitializeRenewal derives the preserved billing day from the first billing date and,
// for active subscriptions without one, schedules the first renewal after now.
func (r *RenewalService) InitializeRenewal(sub *models.Subscription, now time.Time) error {
	sub.FirstBillingDate = billing.DateOf(sub.FirstBillingDate)
	day := sub.FirstBillingDate.Day()
	sub.PreservedBillingDay = &day

	if !sub.IsActive() {
		return nil
	}
	if sub.NextRenewal != nil {
		next := billing.DateOf(*sub.NextRenewal)
		sub.NextRenewal = &next
		return nil
	}
	return r.schedule(sub, now)
}

// RecalculateIfNeeded updates the renewal fields of updated after an edit of existing.
func (r *RenewalService) RecalculateIfNeeded(existing, updated *models.Subscription, now time.Time) error {
	updated.FirstBillingDate = billing.DateOf(updated.FirstBillingDate)

	firstChanged := !billing.DateOf(existing.FirstBillingDate).Equal(updated.FirstBillingDate)
	if firstChanged {
		day := updated.FirstBillingDate.Day()
		updated.PreservedBillingDay = &day
	}

	if updated.PreservedBillingDay == nil {
		anchor := updated.FirstBillingDate
		if updated.NextRenewal != nil {
			anchor = *updated.NextRenewal
		}
		day := billing.ResolvePreservedDay(nil, anchor)
		updated.PreservedBillingDay = &day
	}

	if !updated.IsActive() {
		return nil
	}

	// If billing parameters changed, recalculate
	if firstChanged || existing.Cycle() != updated.Cycle() {
		return r.schedule(updated, now)
	}

	// If renewal date is missing, calculate it
	if updated.NextRenewal == nil {
		return r.schedule(updated, now)
	}

	// Renewals that fell due while the subscription was inactive are skipped, not processed
	if !existing.IsActive() && !updated.NextRenewal.After(billing.DateOf(now)) {
		return r.schedule(updated, now)
	}

	return nil
}

// schedule sets NextRenewal to the first renewal after the first billing date that
// lies after today.
func (r *RenewalService) schedule(sub *models.Subscription, now time.Time) error {
	cycle := sub.Cycle()
	day := billing.ResolvePreservedDay(sub.PreservedBillingDay, sub.FirstBillingDate)

	next, err := billing.NextRenewal(sub.FirstBillingDate, cycle, day)
	if err != nil {
		return err
	}

	if !next.After(billing.DateOf(now)) {
		step, err := billing.Advance(next, cycle, day, now)
		if err != nil {
			return err
		}
		next = step.Next
	}

	sub.NextRenewal = &next
	return nil
}
