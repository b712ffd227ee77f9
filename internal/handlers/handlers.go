package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/notify"
	"github.com/01moynul/storefront-golang/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Store is every persistence operation the handlers use.
// *database.Store implements it.
type Store interface {
	ListCatalogItems(ctx context.Context, kind models.CatalogKind, filter models.CatalogFilter) ([]*models.CatalogItem, error)
	GetCatalogItem(ctx context.Context, kind models.CatalogKind, id string) (*models.CatalogItem, error)
	CreateCatalogItem(ctx context.Context, item *models.CatalogItem) error
	UpdateCatalogItem(ctx context.Context, kind models.CatalogKind, id string, patch models.CatalogPatch) (*models.CatalogItem, error)
	DeleteCatalogItem(ctx context.Context, kind models.CatalogKind, id string) error

	ListCategories(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CategoryNameTaken(ctx context.Context, name string, kind models.CatalogKind, excludeID string) (bool, error)
	CreateCategory(ctx context.Context, cat *models.Category) error
	UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateComment(ctx context.Context, c *models.Comment) error
	ListComments(ctx context.Context, productID, viewerID string) ([]models.Comment, error)
	CommentExists(ctx context.Context, id string) (bool, error)
	CreateReply(ctx context.Context, r *models.Reply) error
	ListReplies(ctx context.Context, commentID, viewerID string) ([]models.Reply, error)
	ReplyExists(ctx context.Context, id string) (bool, error)

	ToggleItemLike(ctx context.Context, productID, userID string) (models.LikeState, error)
	ItemLikeState(ctx context.Context, productID, userID string) (models.LikeState, error)
	ToggleCommentLike(ctx context.Context, target models.CommentLikeTarget, targetID, userID string) (models.LikeState, error)

	CreateOrder(ctx context.Context, o *models.Order) error
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error

	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error

	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

var _ Store = (*database.Store)(nil)

// Options holds the handler settings taken from config.
type Options struct {
	PlaceholderImageURL string
	AdminEmail          string
	NotifyTimeout       time.Duration
	CookieSecure        bool
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store    Store
	Storage  storage.Storage
	Notifier notify.Notifier
	Tokens   *auth.TokenManager
	Options
}

const kindKey = "catalogKind"

// WithKind tags a route group with the catalog table its handlers work on.
func WithKind(kind models.CatalogKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(kindKey, kind)
		c.Next()
	}
}

func catalogKind(c *gin.Context) models.CatalogKind {
	if kind, ok := c.Get(kindKey); ok {
		return kind.(models.CatalogKind)
	}
	return models.KindProduct
}

// label is the display name of a kind, e.g. "Grocery".
func label(kind models.CatalogKind) string {
	s := string(kind)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// storeError answers for a failed store call: 404 for ErrNotFound,
// 409 for ErrDuplicate, and a logged 500 otherwise.
func storeError(c *gin.Context, err error, notFoundMsg, failMsg string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Record already exists"})
	default:
		internalError(c, err, failMsg)
	}
}

func internalError(c *gin.Context, err error, msg string) {
	zap.L().Error(msg,
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
