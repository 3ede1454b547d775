package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/repository"
	"github.com/iliyamo/storefront-api/internal/utils"
)

// CategoryHandler serves the flat per-store category list and the admin
// mutations.
type CategoryHandler struct {
	categories *repository.CategoryRepo
	storeID    uint64
}

func NewCategoryHandler(categories *repository.CategoryRepo, storeID uint64) *CategoryHandler {
	return &CategoryHandler{categories: categories, storeID: storeID}
}

type categoryRequest struct {
	ParentID *uint64 `json:"parent_id"`
	Name     string  `json:"name"`
	Position uint32  `json:"position"`
}

type categoryResponse struct {
	ID        uint64    `json:"id"`
	ParentID  *uint64   `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Position  uint32    `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResponse(c model.Category) categoryResponse {
	resp := categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
	}
	if c.ParentID.Valid {
		v := uint64(c.ParentID.Int64)
		resp.ParentID = &v
	}
	return resp
}

// List returns every category of the store ordered by position.
func (h *CategoryHandler) List(c echo.Context) error {
	rows, err := h.categories.ListByStore(c.Request().Context(), h.storeID)
	if err != nil {
		return serverError(c, err)
	}
	data := make([]categoryResponse, 0, len(rows))
	for _, cat := range rows {
		data = append(data, toCategoryResponse(cat))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": data})
}

// Get returns one category by slug.
func (h *CategoryHandler) Get(c echo.Context) error {
	cat, err := h.categories.GetBySlug(c.Request().Context(), h.storeID, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "not_found", "category not found")
		}
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, toCategoryResponse(cat))
}

func (h *CategoryHandler) bindCategory(c echo.Context, cat *model.Category) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}
	if req.Name == "" {
		return jsonError(c, http.StatusBadRequest, "bad_request", "name is required")
	}
	cat.StoreID = h.storeID
	cat.Name = req.Name
	cat.Position = req.Position
	if req.ParentID != nil {
		cat.ParentID = sql.NullInt64{Int64: int64(*req.ParentID), Valid: true}
	}
	return nil
}

// Create inserts a category.
func (h *CategoryHandler) Create(c echo.Context) error {
	var cat model.Category
	if err := h.bindCategory(c, &cat); err != nil {
		return err
	}

	ctx := c.Request().Context()
	id, err := h.categories.Create(ctx, cat)
	if err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return jsonError(c, http.StatusConflict, "conflict", "a category with this name already exists")
		}
		return serverError(c, err)
	}
	created, err := h.categories.GetBySlug(ctx, h.storeID, utils.Slugify(cat.Name))
	if err == nil {
		return c.JSON(http.StatusCreated, toCategoryResponse(created))
	}
	cat.ID = id
	cat.Slug = utils.Slugify(cat.Name)
	return c.JSON(http.StatusCreated, toCategoryResponse(cat))
}

// Update renames or repositions a category.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid category id")
	}
	var cat model.Category
	if err := h.bindCategory(c, &cat); err != nil {
		return err
	}
	cat.ID = id

	if err := h.categories.Update(c.Request().Context(), cat); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return jsonError(c, http.StatusNotFound, "not_found", "category not found")
		case errors.Is(err, repository.ErrSlugExists):
			return jsonError(c, http.StatusConflict, "conflict", "a category with this name already exists")
		}
		return serverError(c, err)
	}
	cat.Slug = utils.Slugify(cat.Name)
	return c.JSON(http.StatusOK, toCategoryResponse(cat))
}

// Delete removes a category.  Products referencing it fall back to no
// category via the schema's ON DELETE SET NULL.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid category id")
	}
	if err := h.categories.Delete(c.Request().Context(), h.storeID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "not_found", "category not found")
		}
		return serverError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
