package handlers

import (
	"net/http"

	"subcycle/internal/billing"
	"subcycle/internal/models"
	"subcycle/internal/service"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	service service.SubscriptionServiceInterface
}

func NewSubscriptionHandler(svc service.SubscriptionServiceInterface) *SubscriptionHandler {
	return &SubscriptionHandler{service: svc}
}

// CreateSubscriptionRequest is the DTO for creating a subscription via API.
// Required fields are enforced via binding tags.
type CreateSubscriptionRequest struct {
	Name             string  `json:"name" binding:"required"`
	Cost             float64 `json:"cost" binding:"gte=0"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status" binding:"omitempty,oneof=Active Paused Cancelled"`
	CategoryID       uint    `json:"category_id"`
	BillingValue     int     `json:"billing_value" binding:"required,gt=0"`
	BillingUnit      string  `json:"billing_unit" binding:"required"`
	FirstBillingDate string  `json:"first_billing_date" binding:"required"`
	Notes            string  `json:"notes"`
}

// UpdateSubscriptionRequest is the DTO for partial updates via API.
// All fields are pointers so we can distinguish between "not provided" (nil) and "set to zero value".
type UpdateSubscriptionRequest struct {
	Name             *string  `json:"name"`
	Cost             *float64 `json:"cost" binding:"omitempty,gte=0"`
	Currency         *string  `json:"currency"`
	Status           *string  `json:"status" binding:"omitempty,oneof=Active Paused Cancelled"`
	CategoryID       *uint    `json:"category_id"`
	BillingValue     *int     `json:"billing_value" binding:"omitempty,gt=0"`
	BillingUnit      *string  `json:"billing_unit"`
	FirstBillingDate *string  `json:"first_billing_date"`
	Notes            *string  `json:"notes"`
}

// ListSubscriptions returns subscriptions ordered by next renewal, paginated.
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	limit, offset := parsePagination(c)

	subscriptions, total, err := h.service.GetAllPaginated(limit, offset)
	if err != nil {
		apiServiceError(c, err, ErrSubscriptionNotFound)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data: subscriptions,
		Pagination: PaginationMeta{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	})
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	subscription, err := h.service.GetByID(id)
	if err != nil {
		apiServiceError(c, err, ErrSubscriptionNotFound)
		return
	}
	c.JSON(http.StatusOK, subscription)
}

func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiBadRequest(c, err.Error())
		return
	}

	unit, err := billing.ParseUnit(req.BillingUnit)
	if err != nil {
		apiBadRequest(c, err.Error())
		return
	}
	first, err := parseDate(req.FirstBillingDate)
	if err != nil {
		apiBadRequest(c, err.Error())
		return
	}

	subscription := models.Subscription{
		Name:             req.Name,
		Cost:             req.Cost,
		Currency:         req.Currency,
		Status:           req.Status,
		CategoryID:       req.CategoryID,
		BillingValue:     req.BillingValue,
		BillingUnit:      unit,
		FirstBillingDate: first,
		Notes:            req.Notes,
	}
	if subscription.Currency == "" {
		subscription.Currency = "USD"
	}
	if subscription.Status == "" {
		subscription.Status = models.StatusActive
	}

	created, err := h.service.Create(&subscription)
	if err != nil {
		apiServiceError(c, err, ErrSubscriptionNotFound)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateSubscription merges the provided fields into the stored subscription.
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	original, err := h.service.GetByID(id)
	if err != nil {
		apiServiceError(c, err, ErrSubscriptionNotFound)
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiBadRequest(c, err.Error())
		return
	}

	subscription := *original
	if req.Name != nil {
		subscription.Name = *req.Name
	}
	if req.Cost != nil {
		subscription.Cost = *req.Cost
	}
	if req.Currency != nil {
		subscription.Currency = *req.Currency
	}
	if req.Status != nil {
		subscription.Status = *req.Status
	}
	if req.CategoryID != nil {
		subscription.CategoryID = *req.CategoryID
	}
	if req.BillingValue != nil {
		subscription.BillingValue = *req.BillingValue
	}
	if req.BillingUnit != nil {
		unit, err := billing.ParseUnit(*req.BillingUnit)
		if err != nil {
			apiBadRequest(c, err.Error())
			return
		}
		subscription.BillingUnit = unit
	}
	if req.FirstBillingDate != nil {
		first, err := parseDate(*req.FirstBillingDate)
		if err != nil {
			apiBadRequest(c, err.Error())
			return
		}
		subscription.FirstBillingDate = first
	}
	if req.Notes != nil {
		subscription.Notes = *req.Notes
	}

	updated, err := h.service.Update(id, &subscription)
	if err != nil {
		apiServiceError(c, err, ErrSubscriptionNotFound)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		apiServiceError(c, err, ErrSubscriptionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
