package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/beaverbuddy/server/internal/auth"
)

// sessionTTL bounds how long a session survives in the cache without a
// request; the JWT's own expiry is the hard limit.
const sessionTTL = 24 * time.Hour

// AuthMiddleware verifies the bearer JWT and sets the user id in context.
// A redis session entry is checked first; on a cache miss the user row is
// confirmed in Postgres (catching deleted accounts) and re-cached.
func AuthMiddleware(postgres *pgxpool.Pool, redisClient *redis.Client, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with 'Bearer '"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			c.Abort()
			return
		}

		userID, err := auth.ParseToken(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		ctx := context.Background()
		sessionKey := "session:" + userID

		exists, err := redisClient.Exists(ctx, sessionKey).Result()
		if err != nil || exists == 0 {
			// Cache miss or redis unavailable: fall back to Postgres.
			var id string
			err := postgres.QueryRow(ctx, `SELECT id FROM users WHERE id = $1`, userID).Scan(&id)
			if errors.Is(err, pgx.ErrNoRows) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				c.Abort()
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify session"})
				c.Abort()
				return
			}
			redisClient.Set(ctx, sessionKey, "1", sessionTTL)
		} else {
			redisClient.Expire(ctx, sessionKey, sessionTTL)
		}

		c.Set("uid", userID)
		c.Next()
	}
}
