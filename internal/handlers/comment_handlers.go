package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreateCommentInput struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
	Rating *int   `json:"rating"`
}

type CreateReplyInput struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// requireItem answers 404 when the catalog item of the route is unknown.
func (h *Handlers) requireItem(c *gin.Context, kind models.CatalogKind, id string) bool {
	if _, err := h.Store.GetCatalogItem(c.Request.Context(), kind, id); err != nil {
		storeError(c, err, label(kind)+" not found", "Failed to fetch "+string(kind))
		return false
	}
	return true
}

// requireUser answers 401 when userID does not name a known user.
func (h *Handlers) requireUser(c *gin.Context, userID string) (*models.User, bool) {
	user, err := h.Store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		} else {
			internalError(c, err, "Failed to fetch user")
		}
		return nil, false
	}
	return user, true
}

// requireComment answers 404 when the comment is unknown.
func (h *Handlers) requireComment(c *gin.Context, id string) bool {
	ok, err := h.Store.CommentExists(c.Request.Context(), id)
	if err != nil {
		internalError(c, err, "Failed to fetch comment")
		return false
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return false
	}
	return true
}

// ListComments handles GET /api/{kind}/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
	kind := catalogKind(c)
	id := c.Param("id")
	if !h.requireItem(c, kind, id) {
		return
	}

	comments, err := h.Store.ListComments(c.Request.Context(), id, c.Query("userId"))
	if err != nil {
		internalError(c, err, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":      comments,
		"averageRating": models.AverageRating(comments),
		"totalComments": len(comments),
	})
}

// CreateComment handles POST /api/{kind}/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	kind := catalogKind(c)
	id := c.Param("id")
	ctx := c.Request.Context()

	// 1. --- Bind & Validate ---
	var input CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Text = strings.TrimSpace(input.Text)
	if input.UserID == "" || input.Text == "" || input.Rating == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId, text and rating are required"})
		return
	}
	if !models.ValidRating(*input.Rating) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}
	if !models.WithinText(input.Text) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is too long"})
		return
	}

	// 2. --- Check Parent & Author ---
	if !h.requireItem(c, kind, id) {
		return
	}
	user, ok := h.requireUser(c, input.UserID)
	if !ok {
		return
	}

	// 3. --- Insert ---
	comment := &models.Comment{
		ID:        uuid.NewString(),
		ProductID: id,
		UserID:    user.ID,
		Text:      input.Text,
		Rating:    *input.Rating,
	}
	if err := h.Store.CreateComment(ctx, comment); err != nil {
		internalError(c, err, "Failed to create comment")
		return
	}
	comment.User = user.Author()

	// 4. --- Recompute Summary ---
	comments, err := h.Store.ListComments(ctx, id, "")
	if err != nil {
		internalError(c, err, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment":       comment,
		"averageRating": models.AverageRating(comments),
		"totalComments": len(comments),
	})
}

// ListReplies handles GET /api/comments/:id/replies
func (h *Handlers) ListReplies(c *gin.Context) {
	id := c.Param("id")
	if !h.requireComment(c, id) {
		return
	}

	replies, err := h.Store.ListReplies(c.Request.Context(), id, c.Query("userId"))
	if err != nil {
		internalError(c, err, "Failed to fetch replies")
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": replies, "totalReplies": len(replies)})
}

// CreateReply handles POST /api/comments/:id/replies
func (h *Handlers) CreateReply(c *gin.Context) {
	id := c.Param("id")

	var input CreateReplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Text = strings.TrimSpace(input.Text)
	if input.UserID == "" || input.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and text are required"})
		return
	}
	if !models.WithinText(input.Text) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is too long"})
		return
	}

	if !h.requireComment(c, id) {
		return
	}
	user, ok := h.requireUser(c, input.UserID)
	if !ok {
		return
	}

	reply := &models.Reply{
		ID:        uuid.NewString(),
		CommentID: id,
		UserID:    user.ID,
		Text:      input.Text,
	}
	if err := h.Store.CreateReply(c.Request.Context(), reply); err != nil {
		internalError(c, err, "Failed to create reply")
		return
	}
	reply.User = user.Author()

	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}
