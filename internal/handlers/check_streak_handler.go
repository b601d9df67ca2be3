package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/beaverbuddy/server/internal/config"
	checkmodels "github.com/beaverbuddy/server/internal/models/check_streak"
	"github.com/beaverbuddy/server/internal/streak"
)

type StreakHandler struct {
	engine *streak.Engine
	redis  *redis.Client
	cfg    config.Config
	logger *zap.SugaredLogger
}

func NewStreakHandler(engine *streak.Engine, redisClient *redis.Client, cfg config.Config, logger *zap.SugaredLogger) *StreakHandler {
	return &StreakHandler{
		engine: engine,
		redis:  redisClient,
		cfg:    cfg,
		logger: logger,
	}
}

// CheckStreak evaluates the login streak for today. Safe to call more than
// once per day; repeat calls are reads.
func (h *StreakHandler) CheckStreak(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := h.engine.CheckAndUpdate(context.Background(), userID)
	if err != nil {
		h.logError(c, err, "streak check failed")
		respondError(c, h.cfg.IsProduction(), err)
		return
	}

	c.JSON(http.StatusOK, checkmodels.CheckStreakResponse{
		CurrentStreak:   result.CurrentStreak,
		ShouldShowPopup: result.ShouldShowPopup,
		PointsAwarded:   result.PointsAwarded,
		TodayPrize:      result.TodayPrize,
	})
}
