package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/beaverbuddy/server/internal/auth"
	accountmodels "github.com/beaverbuddy/server/internal/models/account"
	loginmodels "github.com/beaverbuddy/server/internal/models/login"
)

// Login verifies credentials and issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginmodels.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	ctx := context.Background()

	var user accountmodels.User
	var hash string
	query := `
		SELECT id, name, email, password_hash, points, current_streak, last_login_date, created_at
		FROM users WHERE email = $1
	`
	err := h.postgres.QueryRow(ctx, query, req.Email).Scan(
		&user.ID, &user.Name, &user.Email, &hash,
		&user.Points, &user.CurrentStreak, &user.LastLoginDate, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !auth.CheckPassword(hash, req.Password)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.logError(c, err, "failed to load user for login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	token, err := auth.SignToken(user.ID, h.cfg.JWTSecret)
	if err != nil {
		h.logError(c, err, "failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	// Session cache lets the auth middleware skip the users lookup.
	h.redis.Set(ctx, "session:"+user.ID, "1", 24*time.Hour)

	c.JSON(http.StatusOK, loginmodels.LoginResponse{
		Token: token,
		User:  user,
	})
}
