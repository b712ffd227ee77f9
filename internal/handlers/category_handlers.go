package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/spf13/cast"
)

// CategoryInput is the body of a category write. Nil fields were not sent.
type CategoryInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	Priority    *string `json:"priority"`
}

func bindCategoryInput(c *gin.Context) (CategoryInput, *multipart.Form, error) {
	var input CategoryInput
	if !isMultipart(c) {
		err := c.ShouldBindJSON(&input)
		return input, nil, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return input, nil, errors.New("Invalid multipart form")
	}
	input.Name = formString(form, "name")
	input.Slug = formString(form, "slug")
	input.Type = formString(form, "type")
	input.Description = formString(form, "description")
	input.ImageURL = formString(form, "imageUrl")
	input.Priority = formString(form, "priority")
	return input, form, nil
}

func (in *CategoryInput) validate(create bool) string {
	if create || in.Name != nil {
		if trimmed(in.Name) == "" {
			return "Name is required"
		}
	}
	if create || in.Type != nil {
		if !models.CatalogKind(trimmed(in.Type)).Valid() {
			return "Type must be one of product, gift, grocery"
		}
	}
	if !models.WithinLength(trimmed(in.Name), models.MaxNameLength) || !models.WithinLength(trimmed(in.Slug), models.MaxNameLength) {
		return "Name and slug must be at most 255 characters"
	}
	if in.Description != nil && !models.WithinText(*in.Description) {
		return "Description is too long"
	}
	if !models.WithinLength(trimmed(in.Priority), models.MaxPriorityLength) {
		return "Priority must be at most 32 characters"
	}
	if !models.WithinLength(trimmed(in.ImageURL), models.MaxURLLength) {
		return "imageUrl is too long"
	}
	return ""
}

// saveCategoryImage stores the optional "image" file.
func (h *Handlers) saveCategoryImage(c *gin.Context, form *multipart.Form) (string, error) {
	files := formFiles(form, "image")
	if len(files) == 0 {
		return "", nil
	}
	return storage.SaveImage(c.Request.Context(), h.Storage, files[0])
}

// ListCategories handles GET /api/categories
// Product categories without products are hidden unless ?includeEmpty=true.
func (h *Handlers) ListCategories(c *gin.Context) {
	filter := models.CategoryFilter{
		Type:     c.Query("type"),
		Priority: c.Query("priority"),
	}
	if filter.Type != "" && !models.CatalogKind(filter.Type).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category type"})
		return
	}
	includeEmpty := cast.ToBool(c.Query("includeEmpty"))

	cats, err := h.Store.ListCategories(c.Request.Context(), filter)
	if err != nil {
		internalError(c, err, "Failed to fetch categories")
		return
	}

	visible := make([]*models.Category, 0, len(cats))
	for _, cat := range cats {
		if !includeEmpty && cat.Type == models.KindProduct && cat.ProductCount == 0 {
			continue
		}
		visible = append(visible, cat)
	}

	c.JSON(http.StatusOK, gin.H{"categories": visible})
}

// GetCategory handles GET /api/categories/:id
func (h *Handlers) GetCategory(c *gin.Context) {
	cat, err := h.Store.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "Category not found", "Failed to fetch category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat})
}

// CreateCategory handles POST /api/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. --- Bind & Validate ---
	input, form, err := bindCategoryInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := input.validate(true); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	name := trimmed(input.Name)
	kind := models.CatalogKind(trimmed(input.Type))

	// 2. --- Check Uniqueness ---
	taken, err := h.Store.CategoryNameTaken(ctx, name, kind, "")
	if err != nil {
		internalError(c, err, "Failed to check category name")
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "A category with this name already exists for this type"})
		return
	}

	// 3. --- Upload Image ---
	imageURL, err := h.saveCategoryImage(c, form)
	if err != nil {
		h.imageError(c, err)
		return
	}

	// 4. --- Insert ---
	cat := &models.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        trimmed(input.Slug),
		Type:        kind,
		Description: trimmed(input.Description),
		ImageURL:    trimmed(input.ImageURL),
		Priority:    trimmed(input.Priority),
	}
	if cat.Slug == "" {
		cat.Slug = slug.Make(name)
	}
	if cat.Priority == "" {
		cat.Priority = models.PriorityNormal
	}
	if imageURL != "" {
		cat.ImageURL = imageURL
	}

	if err := h.Store.CreateCategory(ctx, cat); err != nil {
		h.removeImages(c, imageURL)
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this name already exists for this type"})
			return
		}
		internalError(c, err, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": cat})
}

// UpdateCategory handles PUT /api/categories/:id
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	input, form, err := bindCategoryInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := input.validate(false); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	current, err := h.Store.GetCategory(ctx, id)
	if err != nil {
		storeError(c, err, "Category not found", "Failed to fetch category")
		return
	}

	var patch models.CategoryPatch
	name, kind := current.Name, current.Type
	if input.Name != nil {
		name = trimmed(input.Name)
		patch.Name = &name
	}
	if input.Type != nil {
		kind = models.CatalogKind(trimmed(input.Type))
		patch.Type = &kind
	}

	// A rename or type change must not collide with another category
	if name != current.Name || kind != current.Type {
		taken, err := h.Store.CategoryNameTaken(ctx, name, kind, id)
		if err != nil {
			internalError(c, err, "Failed to check category name")
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this name already exists for this type"})
			return
		}
	}

	switch {
	case input.Slug != nil && trimmed(input.Slug) != "":
		s := trimmed(input.Slug)
		patch.Slug = &s
	case name != current.Name:
		s := slug.Make(name)
		patch.Slug = &s
	}
	if input.Description != nil {
		patch.Description = input.Description
	}
	if input.ImageURL != nil {
		patch.ImageURL = input.ImageURL
	}
	if input.Priority != nil {
		p := strings.TrimSpace(*input.Priority)
		if p == "" {
			p = models.PriorityNormal
		}
		patch.Priority = &p
	}

	imageURL, err := h.saveCategoryImage(c, form)
	if err != nil {
		h.imageError(c, err)
		return
	}
	if imageURL != "" {
		patch.ImageURL = &imageURL
	}

	updated, err := h.Store.UpdateCategory(ctx, id, patch)
	if err != nil {
		h.removeImages(c, imageURL)
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this name already exists for this type"})
			return
		}
		storeError(c, err, "Category not found", "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": updated})
}

// DeleteCategory handles DELETE /api/categories/:id
// Products of the category are kept and lose their categoryId.
func (h *Handlers) DeleteCategory(c *gin.Context) {
	if err := h.Store.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, err, "Category not found", "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
