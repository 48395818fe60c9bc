package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"subcycle/internal/billing"
	"subcycle/internal/scheduler"
	"subcycle/internal/service"

	"github.com/gin-gonic/gin"
)

type RenewalHandler struct {
	runner service.RenewalRunner
	now    func() time.Time
}

func NewRenewalHandler(runner service.RenewalRunner) *RenewalHandler {
	return &RenewalHandler{runner: runner, now: time.Now}
}

// RenewalPreview is the chain of upcoming renewal dates for a billing setup.
type RenewalPreview struct {
	From                string        `json:"from"`
	Cycle               billing.Cycle `json:"cycle"`
	PreservedBillingDay int           `json:"preserved_billing_day"`
	Dates               []string      `json:"dates"`
}

// Preview computes the next renewal dates without touching any subscription.
func (h *RenewalHandler) Preview(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		apiBadRequest(c, err.Error())
		return
	}

	value, err := strconv.Atoi(c.DefaultQuery("value", "1"))
	if err != nil {
		apiBadRequest(c, "value must be an integer")
		return
	}
	unit, err := billing.ParseUnit(c.DefaultQuery("unit", string(billing.UnitMonth)))
	if err != nil {
		apiBadRequest(c, err.Error())
		return
	}
	cycle := billing.Cycle{Value: value, Unit: unit}
	if err := cycle.Validate(); err != nil {
		apiBadRequest(c, err.Error())
		return
	}

	day := from.Day()
	if raw := c.Query("day"); raw != "" {
		if day, err = strconv.Atoi(raw); err != nil {
			apiBadRequest(c, billing.ErrInvalidPreservedDay.Error())
			return
		}
	}

	count := defaultPreviewCount
	if raw := c.Query("count"); raw != "" {
		if count, err = strconv.Atoi(raw); err != nil || count < 1 {
			apiBadRequest(c, "count must be a positive integer")
			return
		}
	}
	if count > maxPreviewCount {
		count = maxPreviewCount
	}

	dates := make([]string, 0, count)
	current := from
	for i := 0; i < count; i++ {
		current, err = billing.NextRenewal(current, cycle, day)
		if err != nil {
			apiBadRequest(c, err.Error())
			return
		}
		dates = append(dates, formatDate(current))
	}

	c.JSON(http.StatusOK, RenewalPreview{
		From:                formatDate(from),
		Cycle:               cycle,
		PreservedBillingDay: day,
		Dates:               dates,
	})
}

// Run processes every due subscription now and returns the batch report.
func (h *RenewalHandler) Run(c *gin.Context) {
	report, err := h.runner.ProcessDue(c.Request.Context(), h.now())
	if errors.Is(err, scheduler.ErrRunInProgress) {
		apiError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil && report == nil {
		slog.Error("manual renewal run failed", "error", err)
		apiInternalError(c, "Failed to process renewals")
		return
	}
	if err != nil {
		slog.Warn("manual renewal run interrupted", "error", err)
	}
	c.JSON(http.StatusOK, report)
}
