package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// loginTimeout bounds the user lookup of a login.
const loginTimeout = 10 * time.Second

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	FullName string `json:"fullName" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"max=64"`
}

// redirectFor is where the client goes after login.
func redirectFor(role string) string {
	if role == models.RoleAdmin {
		return "/admin"
	}
	return "/"
}

func (h *Handlers) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, maxAge, "/", "", h.CookieSecure, true)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	// 2. --- Find User By Email ---
	ctx, cancel := context.WithTimeout(c.Request.Context(), loginTimeout)
	defer cancel()

	user, err := h.Store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		internalError(c, err, "Database error")
		return
	}

	// 3. --- Check Password ---
	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		internalError(c, err, "Failed to check password")
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// 4. --- Generate JWT (The "Passport") ---
	token, err := h.Tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		internalError(c, err, "Failed to generate token")
		return
	}
	h.setAuthCookie(c, token, int(auth.TokenTTL.Seconds()))

	// 5. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      token,
		"user":       user,
		"redirectTo": redirectFor(user.Role),
	})
}

// Register handles POST /api/auth/register. New accounts get the user role.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		internalError(c, err, "Failed to hash password")
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(input.FullName),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: password.Hash,
		Phone:        strings.TrimSpace(input.Phone),
		Role:         models.RoleUser,
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		internalError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "user": user})
}

// Logout handles POST /api/auth/logout by expiring the cookie.
func (h *Handlers) Logout(c *gin.Context) {
	h.setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /api/auth/me. It runs behind AuthMiddleware.
func (h *Handlers) Me(c *gin.Context) {
	userID := c.GetString(middleware.KeyUserID)
	user, err := h.Store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		internalError(c, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "redirectTo": redirectFor(user.Role)})
}
