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

// ProductHandler serves the catalog product endpoints: public reads plus
// the admin mutations.
type ProductHandler struct {
	products *repository.ProductRepo
	storeID  uint64
}

func NewProductHandler(products *repository.ProductRepo, storeID uint64) *ProductHandler {
	return &ProductHandler{products: products, storeID: storeID}
}

type productRequest struct {
	CategoryID  *uint64 `json:"category_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  uint32  `json:"price"`
	SKU         *string `json:"sku"`
	StockQty    uint32  `json:"stock"`
	Status      string  `json:"status"`
	IsFeatured  bool    `json:"is_featured"`
}

type productResponse struct {
	ID          uint64    `json:"id"`
	CategoryID  *uint64   `json:"category_id,omitempty"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	PriceCents  uint32    `json:"price"`
	SKU         *string   `json:"sku,omitempty"`
	StockQty    uint32    `json:"stock"`
	Status      string    `json:"status"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type variantResponse struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	PriceCents *uint32 `json:"price,omitempty"`
	SKU        *string `json:"sku,omitempty"`
	StockQty   uint32  `json:"stock"`
}

type imageResponse struct {
	ID        uint64 `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

type productDetailResponse struct {
	productResponse
	Variants []variantResponse `json:"variants"`
	Images   []imageResponse   `json:"images"`
}

func toProductResponse(p model.Product) productResponse {
	resp := productResponse{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		PriceCents: p.PriceCents,
		StockQty:   p.StockQty,
		Status:     p.Status,
		IsFeatured: p.IsFeatured,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.CategoryID.Valid {
		v := uint64(p.CategoryID.Int64)
		resp.CategoryID = &v
	}
	if p.Description.Valid {
		v := p.Description.String
		resp.Description = &v
	}
	if p.SKU.Valid {
		v := p.SKU.String
		resp.SKU = &v
	}
	return resp
}

// List returns one page of products with pagination metadata.  Filters:
// category_id, status, q.
func (h *ProductHandler) List(c echo.Context) error {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = utils.DefaultPage
	}
	perPage, _ := strconv.ParseInt(c.QueryParam("per_page"), 10, 64)
	if perPage == 0 {
		perPage = utils.DefaultPerPage
	}
	perPage = utils.ClampPerPage(perPage)

	var filter repository.ProductFilter
	if v, err := strconv.ParseUint(c.QueryParam("category_id"), 10, 64); err == nil {
		filter.CategoryID = v
	}
	filter.Status = c.QueryParam("status")
	filter.Query = c.QueryParam("q")

	ctx := c.Request().Context()
	total, err := h.products.Count(ctx, h.storeID, filter)
	if err != nil {
		return serverError(c, err)
	}
	rows, err := h.products.List(ctx, h.storeID, perPage, utils.Offset(page, perPage), filter)
	if err != nil {
		return serverError(c, err)
	}

	data := make([]productResponse, 0, len(rows))
	for _, p := range rows {
		data = append(data, toProductResponse(p))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":       data,
		"pagination": utils.NewPaginationMeta(page, perPage, total),
	})
}

// Get returns one product by slug with its variants and images.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.products.GetBySlug(ctx, h.storeID, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "not_found", "product not found")
		}
		return serverError(c, err)
	}

	variants, err := h.products.Variants(ctx, p.ID)
	if err != nil {
		return serverError(c, err)
	}
	images, err := h.products.Images(ctx, p.ID)
	if err != nil {
		return serverError(c, err)
	}

	detail := productDetailResponse{
		productResponse: toProductResponse(p),
		Variants:        make([]variantResponse, 0, len(variants)),
		Images:          make([]imageResponse, 0, len(images)),
	}
	for _, v := range variants {
		vr := variantResponse{ID: v.ID, Name: v.Name, StockQty: v.StockQty}
		if v.PriceCents.Valid {
			price := uint32(v.PriceCents.Int64)
			vr.PriceCents = &price
		}
		if v.SKU.Valid {
			sku := v.SKU.String
			vr.SKU = &sku
		}
		detail.Variants = append(detail.Variants, vr)
	}
	for _, im := range images {
		detail.Images = append(detail.Images, imageResponse{ID: im.ID, URL: im.URL, IsPrimary: im.IsPrimary})
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *ProductHandler) bindProduct(c echo.Context, p *model.Product) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}
	if req.Name == "" {
		return jsonError(c, http.StatusBadRequest, "bad_request", "name is required")
	}
	switch req.Status {
	case "":
		req.Status = model.ProductDraft
	case model.ProductDraft, model.ProductActive, model.ProductArchived:
	default:
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid status")
	}

	p.StoreID = h.storeID
	p.Name = req.Name
	p.PriceCents = req.PriceCents
	p.StockQty = req.StockQty
	p.Status = req.Status
	p.IsFeatured = req.IsFeatured
	if req.CategoryID != nil {
		p.CategoryID = sql.NullInt64{Int64: int64(*req.CategoryID), Valid: true}
	}
	if req.Description != nil {
		p.Description = sql.NullString{String: *req.Description, Valid: true}
	}
	if req.SKU != nil {
		p.SKU = sql.NullString{String: *req.SKU, Valid: true}
	}
	return nil
}

// Create inserts a product; the slug is derived from the name.
func (h *ProductHandler) Create(c echo.Context) error {
	var p model.Product
	if err := h.bindProduct(c, &p); err != nil {
		return err
	}

	ctx := c.Request().Context()
	id, err := h.products.Create(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return jsonError(c, http.StatusConflict, "conflict", "a product with this name already exists")
		}
		return serverError(c, err)
	}
	created, err := h.products.GetByID(ctx, id)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(created))
}

// Update overwrites a product's mutable fields.  Renaming refreshes the
// slug, so stored links to the old slug stop resolving.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid product id")
	}
	var p model.Product
	if err := h.bindProduct(c, &p); err != nil {
		return err
	}
	p.ID = id

	ctx := c.Request().Context()
	if err := h.products.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return jsonError(c, http.StatusNotFound, "not_found", "product not found")
		case errors.Is(err, repository.ErrSlugExists):
			return jsonError(c, http.StatusConflict, "conflict", "a product with this name already exists")
		}
		return serverError(c, err)
	}
	updated, err := h.products.GetByID(ctx, id)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(updated))
}

// Delete archives a product.  Soft delete: carts that already reference it
// keep resolving.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "bad_request", "invalid product id")
	}
	if err := h.products.Archive(c.Request().Context(), h.storeID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "not_found", "product not found")
		}
		return serverError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
