package service

import (
	"errors"
	"fmt"
	"strings"

	"subcycle/internal/billing"
	"subcycle/internal/i18n"
	"subcycle/internal/models"

	"github.com/containrrr/shoutrrr"
	t "github.com/containrrr/shoutrrr/pkg/types"
)

var ErrNotifierNotConfigured = errors.New("shoutrrr not configured: no notification URLs defined")

// ShoutrrrService delivers renewal notices to every configured Shoutrrr URL.
type ShoutrrrService struct {
	urls        []string
	lang        string
	i18nService *i18n.I18nService
}

func NewShoutrrrService(urls []string, lang string, i18nService *i18n.I18nService) *ShoutrrrService {
	return &ShoutrrrService{
		urls:        urls,
		lang:        lang,
		i18nService: i18nService,
	}
}

func (s *ShoutrrrService) tData(messageID string, data map[string]any) string {
	return s.i18nService.Message(s.lang, messageID, data)
}

func (s *ShoutrrrService) tPlural(messageID string, count int) string {
	return s.i18nService.Plural(s.lang, messageID, count)
}

func (s *ShoutrrrService) sendToAll(title, message string) error {
	if len(s.urls) == 0 {
		return ErrNotifierNotConfigured
	}

	sender, err := shoutrrr.CreateSender(s.urls...)
	if err != nil {
		return fmt.Errorf("failed to create Shoutrrr sender: %w", err)
	}

	params := t.Params{}
	if title != "" {
		params["title"] = title
	}

	var errMsgs []string
	for _, e := range sender.Send(message, &params) {
		if e != nil {
			errMsgs = append(errMsgs, e.Error())
		}
	}
	if len(errMsgs) > 0 {
		return fmt.Errorf("shoutrrr send errors: %s", strings.Join(errMsgs, "; "))
	}
	return nil
}

// SendTestNotification checks the configured URLs
func (s *ShoutrrrService) SendTestNotification() error {
	return s.sendToAll("subcycle", "Test notification from subcycle. Renewal notices will arrive here.")
}

func (s *ShoutrrrService) SendRenewalNotice(sub *models.Subscription, step billing.Step) error {
	title, message := s.renderRenewalNotice(sub, step)
	return s.sendToAll(title, message)
}

func (s *ShoutrrrService) SendRenewalSummary(report *RenewalReport) error {
	title, message := s.renderRenewalSummary(report)
	return s.sendToAll(title, message)
}

func (s *ShoutrrrService) renderRenewalNotice(sub *models.Subscription, step billing.Step) (string, string) {
	title := s.tData("renewal_notice_title", map[string]any{"Name": sub.Name})

	lines := []string{
		s.tData("renewal_notice_body", map[string]any{
			"Name":     sub.Name,
			"Renewed":  i18n.FormatDate(s.lang, step.Last),
			"Cost":     fmt.Sprintf("%.2f", sub.Cost),
			"Currency": sub.Currency,
		}),
		s.tData("renewal_notice_next", map[string]any{"Next": i18n.FormatDate(s.lang, step.Next)}),
		s.tData("renewal_notice_cycle", map[string]any{"Cycle": sub.Cycle().String()}),
	}

	if sub.BillingUnit != billing.UnitDay && sub.PreservedBillingDay != nil && step.Next.Day() != *sub.PreservedBillingDay {
		lines = append(lines, s.tData("renewal_notice_adjusted", map[string]any{"Day": *sub.PreservedBillingDay}))
	}
	if step.Periods > 1 {
		lines = append(lines, s.tPlural("renewal_notice_periods", step.Periods))
	}

	return title, strings.Join(lines, "\n")
}

func (s *ShoutrrrService) renderRenewalSummary(report *RenewalReport) (string, string) {
	title := s.tData("renewal_summary_title", nil)

	lines := []string{s.tPlural("renewal_summary_renewed", report.Renewed)}
	if report.Failed > 0 {
		lines = append(lines, s.tPlural("renewal_summary_failed", report.Failed))
		for _, f := range report.Failures {
			lines = append(lines, fmt.Sprintf("- %s (#%d): %s", f.Name, f.SubscriptionID, f.Error))
		}
	}
	return title, strings.Join(lines, "\n")
}
