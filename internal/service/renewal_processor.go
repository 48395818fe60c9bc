package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"subcycle/internal/billing"
	"subcycle/internal/models"

	"golang.org/x/sync/errgroup"
)

// RenewalStore is the storage the renewal processor reads due subscriptions from
// and writes completed renewals to.
type RenewalStore interface {
	GetDueForRenewal(ctx context.Context, now time.Time) ([]models.Subscription, error)
	ApplyRenewal(ctx context.Context, id uint, expectedNext time.Time, update models.RenewalUpdate) error
}

// RenewalNotifier is told about completed renewals and finished runs.
type RenewalNotifier interface {
	SendRenewalNotice(sub *models.Subscription, step billing.Step) error
	SendRenewalSummary(report *RenewalReport) error
}

var errNoRenewalDate = errors.New("subscription has no next renewal date")

// errNotDue marks a loaded subscription whose renewal date is after the cutoff.
var errNotDue = errors.New("subscription is not due")

// RenewalFailure describes one subscription that could not be renewed.
type RenewalFailure struct {
	SubscriptionID uint   `json:"subscription_id"`
	Name           string `json:"name"`
	Error          string `json:"error"`
}

// RenewalReport summarizes one renewal run.
type RenewalReport struct {
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Due       int              `json:"due"`
	Renewed   int              `json:"renewed"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Periods   int              `json:"periods"`
	Failures  []RenewalFailure `json:"failures"`
}

// RenewalProcessor advances every due subscription past the current date.
type RenewalProcessor struct {
	store    RenewalStore
	notifier RenewalNotifier
	workers  int
	logger   *slog.Logger
}

// NewRenewalProcessor creates a processor. notifier may be nil.
func NewRenewalProcessor(store RenewalStore, notifier RenewalNotifier, workers int, logger *slog.Logger) *RenewalProcessor {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RenewalProcessor{
		store:    store,
		notifier: notifier,
		workers:  workers,
		logger:   logger,
	}
}

// ProcessDue renews every active subscription whose next renewal is on or before
// now's calendar date, taken in now's location.
//
// A failing subscription is recorded in the report and does not stop the others.
// An error is returned only when the due subscriptions cannot be loaded or ctx ends
// before every subscription was started; the partial report is returned with it.
func (p *RenewalProcessor) ProcessDue(ctx context.Context, now time.Time) (*RenewalReport, error) {
	started := time.Now()
	cutoff := billing.DateOf(now)

	subs, err := p.store.GetDueForRenewal(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load due subscriptions: %w", err)
	}

	report := &RenewalReport{
		StartedAt: now,
		Due:       len(subs),
		Failures:  []RenewalFailure{},
	}

	if len(subs) == 0 {
		p.logger.Info("no subscriptions due for renewal")
		report.Duration = time.Since(started)
		return report, nil
	}

	p.logger.Info("processing due renewals", "count", len(subs), "workers", p.workers)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.workers)

	for i := range subs {
		if ctx.Err() != nil {
			break
		}
		sub := &subs[i]
		g.Go(func() error {
			step, err := p.renew(ctx, sub, cutoff)

			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, errNotDue) {
				return nil
			}
			if err != nil {
				report.Failed++
				report.Failures = append(report.Failures, RenewalFailure{
					SubscriptionID: sub.ID,
					Name:           sub.Name,
					Error:          err.Error(),
				})
				return nil
			}
			report.Renewed++
			report.Periods += step.Periods
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].SubscriptionID < report.Failures[j].SubscriptionID
	})
	report.Skipped = report.Due - report.Renewed - report.Failed
	report.Duration = time.Since(started)

	p.logger.Info("renewal run complete",
		"renewed", report.Renewed, "failed", report.Failed, "skipped", report.Skipped,
		"periods", report.Periods, "duration", report.Duration)

	if p.notifier != nil {
		if err := p.notifier.SendRenewalSummary(report); err != nil {
			p.logger.Warn("failed to send renewal summary", "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// renew advances one subscription. The stored row is only updated if its next
// renewal is still the one this calculation started from.
func (p *RenewalProcessor) renew(ctx context.Context, sub *models.Subscription, cutoff time.Time) (billing.Step, error) {
	if sub.NextRenewal == nil {
		return billing.Step{}, errNoRenewalDate
	}

	current := *sub.NextRenewal
	day := billing.ResolvePreservedDay(sub.PreservedBillingDay, current)

	step, err := billing.Advance(current, sub.Cycle(), day, cutoff)
	if err != nil {
		p.logger.Error("failed to calculate renewal", "subscription_id", sub.ID, "error", err)
		return billing.Step{}, err
	}
	if step.Periods == 0 {
		p.logger.Warn("skipping subscription that is not due", "subscription_id", sub.ID,
			"next_renewal", current.Format(time.DateOnly), "cutoff", cutoff.Format(time.DateOnly))
		return billing.Step{}, errNotDue
	}

	update := models.RenewalUpdate{
		LastRenewal:         step.Last,
		NextRenewal:         step.Next,
		PreservedBillingDay: day,
	}
	if err := p.store.ApplyRenewal(ctx, sub.ID, current, update); err != nil {
		p.logger.Error("failed to store renewal", "subscription_id", sub.ID, "error", err)
		return billing.Step{}, err
	}

	sub.LastRenewal = &update.LastRenewal
	sub.NextRenewal = &update.NextRenewal
	sub.PreservedBillingDay = &day

	p.logger.Info("renewed subscription",
		"subscription_id", sub.ID, "name", sub.Name, "periods", step.Periods,
		"last_renewal", step.Last.Format(time.DateOnly), "next_renewal", step.Next.Format(time.DateOnly))

	if p.notifier != nil {
		if err := p.notifier.SendRenewalNotice(sub, step); err != nil {
			p.logger.Warn("failed to send renewal notice", "subscription_id", sub.ID, "error", err)
		}
	}

	return step, nil
}
