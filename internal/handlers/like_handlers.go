package handlers

import (
	"net/http"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
)

type LikeInput struct {
	UserID string `json:"userId"`
}

func bindLikeInput(c *gin.Context) (LikeInput, bool) {
	var input LikeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return input, false
	}
	if input.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return input, false
	}
	return input, true
}

// GetItemLikes handles GET /api/{kind}/:id/likes without changing anything.
func (h *Handlers) GetItemLikes(c *gin.Context) {
	kind := catalogKind(c)
	id := c.Param("id")
	if !h.requireItem(c, kind, id) {
		return
	}

	state, err := h.Store.ItemLikeState(c.Request.Context(), id, c.Query("userId"))
	if err != nil {
		internalError(c, err, "Failed to fetch likes")
		return
	}
	c.JSON(http.StatusOK, state)
}

// ToggleItemLike handles POST /api/{kind}/:id/likes
// Calling it twice returns the item to its original state.
func (h *Handlers) ToggleItemLike(c *gin.Context) {
	kind := catalogKind(c)
	id := c.Param("id")

	input, ok := bindLikeInput(c)
	if !ok {
		return
	}
	if _, ok := h.requireUser(c, input.UserID); !ok {
		return
	}
	if !h.requireItem(c, kind, id) {
		return
	}

	state, err := h.Store.ToggleItemLike(c.Request.Context(), id, input.UserID)
	if err != nil {
		internalError(c, err, "Failed to toggle like")
		return
	}
	c.JSON(http.StatusOK, state)
}

// ToggleCommentLike handles POST /api/comments/:id/likes
func (h *Handlers) ToggleCommentLike(c *gin.Context) {
	h.toggleCommentLike(c, models.TargetComment)
}

// ToggleReplyLike handles POST /api/replies/:id/likes
func (h *Handlers) ToggleReplyLike(c *gin.Context) {
	h.toggleCommentLike(c, models.TargetReply)
}

func (h *Handlers) toggleCommentLike(c *gin.Context, target models.CommentLikeTarget) {
	id := c.Param("id")
	ctx := c.Request.Context()

	input, ok := bindLikeInput(c)
	if !ok {
		return
	}
	if _, ok := h.requireUser(c, input.UserID); !ok {
		return
	}

	var exists bool
	var err error
	if target == models.TargetReply {
		exists, err = h.Store.ReplyExists(ctx, id)
	} else {
		exists, err = h.Store.CommentExists(ctx, id)
	}
	if err != nil {
		internalError(c, err, "Failed to fetch "+string(target))
		return
	}
	if !exists {
		msg := "Comment not found"
		if target == models.TargetReply {
			msg = "Reply not found"
		}
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
		return
	}

	state, err := h.Store.ToggleCommentLike(ctx, target, id, input.UserID)
	if err != nil {
		internalError(c, err, "Failed to toggle like")
		return
	}
	c.JSON(http.StatusOK, state)
}
