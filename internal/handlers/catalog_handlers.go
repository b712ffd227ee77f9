package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Inputs ---

// CatalogInput is the body of a product, gift or grocery write.
// Nil fields were not sent; on update they are left untouched.
type CatalogInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"imageUrl"`
	ImageURLs   *[]string        `json:"imageUrls"`
	CategoryID  *string          `json:"categoryId"`
}

// bindCatalogInput reads a JSON or multipart body. Multipart files are not
// saved here; the form is returned so they can be stored after validation.
func bindCatalogInput(c *gin.Context) (CatalogInput, *multipart.Form, error) {
	var input CatalogInput
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&input); err != nil {
			return input, nil, err
		}
		return input, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return input, nil, errors.New("Invalid multipart form")
	}
	input.Name = formString(form, "name")
	input.Description = formString(form, "description")
	input.ImageURL = formString(form, "imageUrl")
	input.CategoryID = formString(form, "categoryId")

	// An empty price field is treated as not sent
	if raw := trimmed(formString(form, "price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return input, nil, errors.New("Invalid price")
		}
		input.Price = &price
	}
	if input.ImageURLs, err = formList(form, "imageUrls"); err != nil {
		return input, nil, errors.New("Invalid imageUrls")
	}
	return input, form, nil
}

// validate checks required fields and column limits. A valid price is
// rounded to cents in place.
func (in *CatalogInput) validate(create bool) string {
	if create || in.Name != nil {
		if trimmed(in.Name) == "" {
			return "Name is required"
		}
		if !models.WithinLength(trimmed(in.Name), models.MaxNameLength) {
			return "Name must be at most 255 characters"
		}
	}
	if in.Description != nil && !models.WithinText(*in.Description) {
		return "Description is too long"
	}
	if create && in.Price == nil {
		return "Price is required"
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return "Price must not be negative"
		}
		price, ok := models.NormalizeAmount(*in.Price)
		if !ok {
			return "Price must be below 10000000000"
		}
		in.Price = &price
	}
	if in.ImageURL != nil && !models.WithinLength(*in.ImageURL, models.MaxURLLength) {
		return "imageUrl is too long"
	}
	if in.ImageURLs != nil {
		for _, url := range *in.ImageURLs {
			if !models.WithinLength(url, models.MaxURLLength) {
				return "imageUrls entries are too long"
			}
		}
	}
	if in.CategoryID != nil && !models.WithinLength(trimmed(in.CategoryID), models.MaxIDLength) {
		return "Invalid categoryId"
	}
	return ""
}

// --- Image helpers ---

// storedImages are the objects saved for one request.
type storedImages struct {
	primary string
	extra   []string
}

func (s storedImages) all() []string {
	return append([]string{s.primary}, s.extra...)
}

// saveImages stores the "image" file (the primary image) and every "images" file.
// On error the objects stored so far are still returned.
func (h *Handlers) saveImages(c *gin.Context, form *multipart.Form) (storedImages, error) {
	ctx := c.Request.Context()

	var saved storedImages
	if files := formFiles(form, "image"); len(files) > 0 {
		url, err := storage.SaveImage(ctx, h.Storage, files[0])
		if err != nil {
			return saved, err
		}
		saved.primary = url
	}

	for _, fh := range formFiles(form, "images") {
		url, err := storage.SaveImage(ctx, h.Storage, fh)
		if err != nil {
			return saved, err
		}
		saved.extra = append(saved.extra, url)
	}
	return saved, nil
}

func (h *Handlers) imageError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotImage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files can be uploaded"})
		return
	}
	internalError(c, err, "Failed to upload image")
}

// removeImages deletes stored objects of a removed item. Failures are only logged.
func (h *Handlers) removeImages(c *gin.Context, urls ...string) {
	seen := map[string]bool{}
	for _, url := range urls {
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		if err := h.Storage.Delete(c.Request.Context(), url); err != nil {
			zap.L().Warn("Failed to delete stored image", zap.String("url", url), zap.Error(err))
		}
	}
}

// checkCategory answers 404 when a product points at an unknown category
// and 400 when the category is not a product category.
func (h *Handlers) checkCategory(c *gin.Context, kind models.CatalogKind, categoryID *string) bool {
	id := trimmed(categoryID)
	if !kind.HasCategory() || id == "" {
		return true
	}
	cat, err := h.Store.GetCategory(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, "Category not found", "Failed to check category")
		return false
	}
	if cat.Type != models.KindProduct {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category must be a product category"})
		return false
	}
	return true
}

// --- Handlers ---

// ListCatalogItems handles GET /api/{kind}
func (h *Handlers) ListCatalogItems(c *gin.Context) {
	kind := catalogKind(c)
	filter := models.CatalogFilter{CategoryID: c.Query("categoryId")}

	items, err := h.Store.ListCatalogItems(c.Request.Context(), kind, filter)
	if err != nil {
		internalError(c, err, fmt.Sprintf("Failed to fetch %s", kind.Path()))
		return
	}
	for _, item := range items {
		item.ImageURL = item.DisplayImage(h.PlaceholderImageURL)
	}

	c.JSON(http.StatusOK, gin.H{kind.Path(): items})
}

type catalogDetail struct {
	*models.CatalogItem
	Comments      []models.Comment `json:"comments"`
	AverageRating float64          `json:"averageRating"`
	TotalComments int              `json:"totalComments"`
	TotalLikes    int              `json:"totalLikes"`
	IsLiked       bool             `json:"isLiked"`
}

// GetCatalogItem handles GET /api/{kind}/:id
// The optional ?userId= marks the comments and the item liked by that user.
func (h *Handlers) GetCatalogItem(c *gin.Context) {
	kind := catalogKind(c)
	id := c.Param("id")
	viewerID := c.Query("userId")
	ctx := c.Request.Context()

	item, err := h.Store.GetCatalogItem(ctx, kind, id)
	if err != nil {
		storeError(c, err, label(kind)+" not found", "Failed to fetch "+string(kind))
		return
	}

	comments, err := h.Store.ListComments(ctx, id, viewerID)
	if err != nil {
		internalError(c, err, "Failed to fetch comments")
		return
	}
	likes, err := h.Store.ItemLikeState(ctx, id, viewerID)
	if err != nil {
		internalError(c, err, "Failed to fetch likes")
		return
	}

	item.ImageURL = item.DisplayImage(h.PlaceholderImageURL)
	c.JSON(http.StatusOK, catalogDetail{
		CatalogItem:   item,
		Comments:      comments,
		AverageRating: models.AverageRating(comments),
		TotalComments: len(comments),
		TotalLikes:    likes.LikeCount,
		IsLiked:       viewerID != "" && likes.Liked,
	})
}

// CreateCatalogItem handles POST /api/{kind} as JSON or multipart/form-data.
func (h *Handlers) CreateCatalogItem(c *gin.Context) {
	kind := catalogKind(c)

	// 1. --- Bind ---
	input, form, err := bindCatalogInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Validate ---
	if msg := input.validate(true); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if !h.checkCategory(c, kind, input.CategoryID) {
		return
	}

	// 3. --- Upload Images ---
	saved, err := h.saveImages(c, form)
	if err != nil {
		h.removeImages(c, saved.all()...)
		h.imageError(c, err)
		return
	}

	// 4. --- Build Item ---
	item := &models.CatalogItem{
		ID:          uuid.NewString(),
		Kind:        kind,
		Name:        trimmed(input.Name),
		Description: trimmed(input.Description),
		Price:       *input.Price,
		ImageURL:    trimmed(input.ImageURL),
		ImageURLs:   []string{},
	}
	if input.ImageURLs != nil {
		item.ImageURLs = append(item.ImageURLs, *input.ImageURLs...)
	}
	item.ImageURLs = append(item.ImageURLs, saved.extra...)
	if saved.primary != "" {
		item.ImageURL = saved.primary
	}
	if item.ImageURL == "" && len(item.ImageURLs) > 0 {
		item.ImageURL = item.ImageURLs[0]
	}
	if categoryID := trimmed(input.CategoryID); kind.HasCategory() && categoryID != "" {
		item.CategoryID = &categoryID
	}

	// 5. --- Insert ---
	if err := h.Store.CreateCatalogItem(c.Request.Context(), item); err != nil {
		h.removeImages(c, saved.all()...)
		storeError(c, err, label(kind)+" not found", "Failed to create "+string(kind))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    label(kind) + " created successfully",
		string(kind): item,
	})
}

// UpdateCatalogItem handles PUT /api/{kind}/:id
// Only the fields present in the request are changed.
func (h *Handlers) UpdateCatalogItem(c *gin.Context) {
	kind := catalogKind(c)
	id := c.Param("id")
	ctx := c.Request.Context()

	// 1. --- Bind & Validate ---
	input, form, err := bindCatalogInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := input.validate(false); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// 2. --- Check Existence ---
	current, err := h.Store.GetCatalogItem(ctx, kind, id)
	if err != nil {
		storeError(c, err, label(kind)+" not found", "Failed to fetch "+string(kind))
		return
	}
	if !h.checkCategory(c, kind, input.CategoryID) {
		return
	}

	// 3. --- Upload Images ---
	saved, err := h.saveImages(c, form)
	if err != nil {
		h.removeImages(c, saved.all()...)
		h.imageError(c, err)
		return
	}

	// 4. --- Build Patch ---
	patch := models.CatalogPatch{
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		ImageURLs:   input.ImageURLs,
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		patch.Name = &name
	}
	if kind.HasCategory() && input.CategoryID != nil {
		categoryID := strings.TrimSpace(*input.CategoryID)
		patch.CategoryID = &categoryID
	}
	if saved.primary != "" {
		patch.ImageURL = &saved.primary
	}
	if len(saved.extra) > 0 {
		base := current.ImageURLs
		if patch.ImageURLs != nil {
			base = *patch.ImageURLs
		}
		merged := append(append([]string{}, base...), saved.extra...)
		patch.ImageURLs = &merged
	}
	// Keep a primary image when the item had none
	if patch.ImageURL == nil && current.ImageURL == "" && patch.ImageURLs != nil && len(*patch.ImageURLs) > 0 {
		first := (*patch.ImageURLs)[0]
		patch.ImageURL = &first
	}

	// 5. --- Update ---
	updated, err := h.Store.UpdateCatalogItem(ctx, kind, id, patch)
	if err != nil {
		h.removeImages(c, saved.all()...)
		storeError(c, err, label(kind)+" not found", "Failed to update "+string(kind))
		return
	}

	// 6. --- Drop Replaced Primary Image ---
	if saved.primary != "" && current.ImageURL != "" && current.ImageURL != saved.primary &&
		!slices.Contains(updated.ImageURLs, current.ImageURL) {
		h.removeImages(c, current.ImageURL)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    label(kind) + " updated successfully",
		string(kind): updated,
	})
}

// DeleteCatalogItem handles DELETE /api/{kind}/:id
func (h *Handlers) DeleteCatalogItem(c *gin.Context) {
	kind := catalogKind(c)
	id := c.Param("id")
	ctx := c.Request.Context()

	item, err := h.Store.GetCatalogItem(ctx, kind, id)
	if err != nil {
		storeError(c, err, label(kind)+" not found", "Failed to fetch "+string(kind))
		return
	}
	if err := h.Store.DeleteCatalogItem(ctx, kind, id); err != nil {
		storeError(c, err, label(kind)+" not found", "Failed to delete "+string(kind))
		return
	}
	h.removeImages(c, append([]string{item.ImageURL}, item.ImageURLs...)...)

	c.JSON(http.StatusOK, gin.H{"message": label(kind) + " deleted successfully"})
}
