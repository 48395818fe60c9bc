package handlers

import (
	"net/http"

	"subcycle/internal/models"
	"subcycle/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service service.CategoryServiceInterface
}

func NewCategoryHandler(service service.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListCategories returns all categories with pagination support.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	limit, offset := parsePagination(c)

	categories, total, err := h.service.GetAllPaginated(limit, offset)
	if err != nil {
		apiServiceError(c, err, ErrCategoryNotFound)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data: categories,
		Pagination: PaginationMeta{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	})
}

// Create a new category
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiBadRequest(c, ErrInvalidRequestBody)
		return
	}
	created, err := h.service.Create(&models.Category{Name: req.Name})
	if err != nil {
		apiServiceError(c, err, ErrCategoryNotFound)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Rename a category
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiBadRequest(c, ErrInvalidRequestBody)
		return
	}
	updated, err := h.service.Rename(id, req.Name)
	if err != nil {
		apiServiceError(c, err, ErrCategoryNotFound)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete a category, moving its subscriptions to the default one
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(id); err != nil {
		apiServiceError(c, err, ErrCategoryNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
