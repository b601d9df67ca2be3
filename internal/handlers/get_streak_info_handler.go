package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	infomodels "github.com/beaverbuddy/server/internal/models/streak_info"
)

// GetStreakInfo returns the user's streak state without mutating anything.
func (h *StreakHandler) GetStreakInfo(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	state, err := h.engine.GetInfo(context.Background(), userID)
	if err != nil {
		h.logError(c, err, "failed to get streak info")
		respondError(c, h.cfg.IsProduction(), err)
		return
	}

	c.JSON(http.StatusOK, infomodels.StreakInfoResponse{
		CurrentStreak: state.CurrentStreak,
		LastLoginDate: state.LastLoginDate,
		Points:        state.Points,
	})
}
