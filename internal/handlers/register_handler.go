package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/beaverbuddy/server/internal/auth"
	"github.com/beaverbuddy/server/internal/config"
	accountmodels "github.com/beaverbuddy/server/internal/models/account"
	registermodels "github.com/beaverbuddy/server/internal/models/register"
)

type AuthHandler struct {
	postgres *pgxpool.Pool
	redis    *redis.Client
	cfg      config.Config
	logger   *zap.SugaredLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(postgres *pgxpool.Pool, redisClient *redis.Client, cfg config.Config, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		postgres: postgres,
		redis:    redisClient,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register creates a new account and issues a session token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registermodels.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email and password are required"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}

	ctx := context.Background()

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logError(c, err, "failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := accountmodels.User{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING created_at
	`
	if err := h.postgres.QueryRow(ctx, query, user.ID, user.Name, user.Email, hash).Scan(&user.CreatedAt); err != nil {
		// No row back means the email is taken.
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	token, err := auth.SignToken(user.ID, h.cfg.JWTSecret)
	if err != nil {
		h.logError(c, err, "failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	h.redis.Set(ctx, "session:"+user.ID, "1", 24*time.Hour)

	c.JSON(http.StatusCreated, registermodels.RegisterResponse{
		Token: token,
		User:  user,
	})
}
