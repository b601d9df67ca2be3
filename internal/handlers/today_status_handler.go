package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	todaymodels "github.com/beaverbuddy/server/internal/models/today_status"
)

// todayStatusTTL keeps the cached status fresh enough for polling clients;
// submits invalidate it immediately.
const todayStatusTTL = 5 * time.Minute

// TodayStatus reports today's journal progress without exposing answers.
func (h *JournalHandler) TodayStatus(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx := context.Background()
	cacheKey := todayStatusKey(userID)

	if cached, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var resp todaymodels.TodayStatusResponse
		if json.Unmarshal([]byte(cached), &resp) == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	status, err := h.engine.Status(ctx, userID)
	if err != nil {
		h.logError(c, err, "failed to fetch today's journal status")
		respondError(c, h.cfg.IsProduction(), err)
		return
	}

	resp := todaymodels.TodayStatusResponse{HasJournal: status.HasJournal}
	if !status.HasJournal {
		resp.Message = "No journal prompts for today"
	} else {
		resp.TotalPrompts = &status.TotalPrompts
		resp.AnsweredPrompts = &status.AnsweredPrompts
		resp.RemainingPrompts = &status.RemainingPrompts
		resp.IsCompleted = &status.IsCompleted
		resp.CompletedAt = status.CompletedAt
		resp.Prompts = status.Prompts
	}

	if data, err := json.Marshal(resp); err == nil {
		h.redis.Set(ctx, cacheKey, data, todayStatusTTL)
	}

	c.JSON(http.StatusOK, resp)
}
