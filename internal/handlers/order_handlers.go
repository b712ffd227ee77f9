package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/notify"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//
// --- Order Intake (Public) ---
//

const defaultNotifyTimeout = 10 * time.Second

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerName  string           `json:"customerName"`
	CustomerEmail string           `json:"customerEmail"`
	CustomerPhone string           `json:"customerPhone"`
	Items         []OrderItemInput `json:"items"`
	Total         *decimal.Decimal `json:"total"`
	Source        string           `json:"source"`
	Notes         string           `json:"notes"`
}

// validate checks presence and column limits. A valid total is rounded to
// cents in place.
func (in *CreateOrderInput) validate() string {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerEmail) == "" || strings.TrimSpace(in.CustomerPhone) == "" {
		return "customerName, customerEmail and customerPhone are required"
	}
	if !models.WithinLength(strings.TrimSpace(in.CustomerName), models.MaxNameLength) ||
		!models.WithinLength(strings.TrimSpace(in.CustomerEmail), models.MaxNameLength) {
		return "customerName and customerEmail must be at most 255 characters"
	}
	if !models.WithinLength(strings.TrimSpace(in.CustomerPhone), models.MaxPhoneLength) {
		return "customerPhone must be at most 64 characters"
	}
	if !models.WithinText(in.Notes) {
		return "Notes are too long"
	}
	if len(in.Items) == 0 {
		return "Order must contain at least one item"
	}
	for _, item := range in.Items {
		if item.ProductID == "" {
			return "Every item needs a productId"
		}
		if !models.WithinLength(item.ProductID, models.MaxIDLength) {
			return "Invalid productId"
		}
		if item.Quantity < 1 {
			return "Item quantity must be at least 1"
		}
		if item.Quantity > models.MaxQuantity {
			return "Item quantity is too large"
		}
	}
	if in.Total == nil {
		return "Total is required"
	}
	if in.Total.IsNegative() {
		return "Total must not be negative"
	}
	total, ok := models.NormalizeAmount(*in.Total)
	if !ok {
		return "Total must be below 10000000000"
	}
	in.Total = &total
	if in.Source != "" && !models.ValidOrderSource(in.Source) {
		return "Source must be one of site, whatsapp, other"
	}
	return ""
}

// CreateOrder is the handler for POST /api/orders
// The total is taken as submitted. Notification mails are best-effort.
func (h *Handlers) CreateOrder(c *gin.Context) {
	// 1. --- Bind & Validate (before any write) ---
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := input.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// 2. --- Build Order ---
	order := &models.Order{
		ID:            uuid.NewString(),
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		Total:         *input.Total,
		Source:        input.Source,
		Status:        models.OrderStatusPending,
		Notes:         input.Notes,
		Items:         make([]models.OrderItem, 0, len(input.Items)),
	}
	if order.Source == "" {
		order.Source = models.SourceSite
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	// 3. --- Persist (order + items in one transaction) ---
	if err := h.Store.CreateOrder(c.Request.Context(), order); err != nil {
		internalError(c, err, "Failed to place order")
		return
	}

	// 4. --- Notify ---
	h.sendOrderMails(c.Request.Context(), order)

	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

// sendOrderMails sends the customer confirmation and the admin alert side by
// side. Each send has its own timeout and failures are only logged.
func (h *Handlers) sendOrderMails(ctx context.Context, order *models.Order) {
	msgs := []notify.Message{notify.OrderConfirmation(order)}
	if h.AdminEmail != "" {
		msgs = append(msgs, notify.OrderAlert(order, h.AdminEmail))
	} else {
		zap.L().Warn("ADMIN_EMAIL not set, skipping admin order alert", zap.String("orderId", order.ID))
	}

	// The order is placed already; a client disconnect must not cancel the mails.
	base := context.WithoutCancel(ctx)
	timeout := h.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}

	var wg sync.WaitGroup
	for _, msg := range msgs {
		wg.Add(1)
		go func(msg notify.Message) {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(base, timeout)
			defer cancel()
			if err := h.Notifier.Send(sendCtx, msg); err != nil {
				zap.L().Warn("Failed to send order email",
					zap.String("orderId", order.ID),
					zap.String("to", msg.To),
					zap.Error(err),
				)
			}
		}(msg)
	}
	wg.Wait()
}

//
// --- Order Management (Admin) ---
//

type UpdateOrderInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// ListOrders handles GET /api/orders?status=&source=
func (h *Handlers) ListOrders(c *gin.Context) {
	filter := models.OrderFilter{Status: c.Query("status"), Source: c.Query("source")}
	if filter.Status != "" && !models.ValidOrderStatus(filter.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}
	if filter.Source != "" && !models.ValidOrderSource(filter.Source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid source filter"})
		return
	}

	orders, err := h.Store.ListOrders(c.Request.Context(), filter)
	if err != nil {
		internalError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.Store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "Order not found", "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrder handles PUT /api/orders/:id (status and notes only)
func (h *Handlers) UpdateOrder(c *gin.Context) {
	var input UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Status == nil && input.Notes == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if input.Status != nil && !models.ValidOrderStatus(*input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of pending, confirmed, shipped, delivered, cancelled"})
		return
	}
	if input.Notes != nil && !models.WithinText(*input.Notes) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Notes are too long"})
		return
	}

	order, err := h.Store.UpdateOrder(c.Request.Context(), c.Param("id"), models.OrderPatch{Status: input.Status, Notes: input.Notes})
	if err != nil {
		storeError(c, err, "Order not found", "Failed to update order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": order})
}

// DeleteOrder handles DELETE /api/orders/:id
func (h *Handlers) DeleteOrder(c *gin.Context) {
	if err := h.Store.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, err, "Order not found", "Failed to delete order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}
