package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	listmodels "github.com/beaverbuddy/server/internal/models/list_entries"
)

// ListEntries returns the user's journal history, newest first.
func (h *JournalHandler) ListEntries(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter. Must be a positive number."})
			return
		}
		limit = parsed
	}

	var startDate, endDate *time.Time
	if s := c.Query("startDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate. Use YYYY-MM-DD."})
			return
		}
		startDate = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate. Use YYYY-MM-DD."})
			return
		}
		endDate = &t
	}

	views, err := h.engine.ListEntries(context.Background(), userID, limit, startDate, endDate)
	if err != nil {
		h.logError(c, err, "failed to list journal entries")
		respondError(c, h.cfg.IsProduction(), err)
		return
	}

	entries := make([]listmodels.Entry, len(views))
	for i, v := range views {
		entries[i] = listmodels.Entry{
			ID:              v.ID,
			Date:            v.Day,
			JournalPrompts:  v.Prompts,
			CompletedAt:     v.CompletedAt,
			CreatedAt:       v.CreatedAt,
			TotalPrompts:    v.TotalPrompts,
			AnsweredPrompts: v.AnsweredPrompts,
		}
	}

	effectiveLimit := limit
	if effectiveLimit <= 0 {
		effectiveLimit = 10
	} else if effectiveLimit > 100 {
		effectiveLimit = 100
	}

	c.JSON(http.StatusOK, listmodels.ListEntriesResponse{
		Entries: entries,
		Count:   len(entries),
		Limit:   effectiveLimit,
	})
}
