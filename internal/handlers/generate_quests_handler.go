package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/beaverbuddy/server/internal/ai"
	"github.com/beaverbuddy/server/internal/config"
	"github.com/beaverbuddy/server/internal/journal"
	questsmodels "github.com/beaverbuddy/server/internal/models/generate_quests"
)

// minFeelingLength keeps the mood check-in substantial enough to generate
// personalized quests from.
const minFeelingLength = 20

type QuestsHandler struct {
	generator *ai.QuestGenerator
	store     journal.Store
	redis     *redis.Client
	cfg       config.Config
	logger    *zap.SugaredLogger
}

func NewQuestsHandler(generator *ai.QuestGenerator, store journal.Store, redisClient *redis.Client, cfg config.Config, logger *zap.SugaredLogger) *QuestsHandler {
	return &QuestsHandler{
		generator: generator,
		store:     store,
		redis:     redisClient,
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate turns the day's mood check-in into quests and journal prompts and
// creates today's daily cycle record. Calling it again on the same day
// returns the already-stored prompts rather than regenerating.
func (h *QuestsHandler) Generate(c *gin.Context) {
	var req questsmodels.GenerateQuestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := userFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	feeling := strings.TrimSpace(req.Feeling)
	if len(feeling) < minFeelingLength {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Please share at least 20 characters about how you're feeling"})
		return
	}

	ctx := context.Background()

	plan, err := h.generator.GeneratePlan(ctx, feeling)
	if err != nil {
		h.logError(c, err, "quest generation failed")
		respondError(c, h.cfg.IsProduction(), err)
		return
	}

	rec, err := h.store.CreateToday(ctx, userID, feeling, plan.JournalPrompts)
	if err != nil {
		h.logError(c, err, "failed to store daily cycle")
		respondError(c, h.cfg.IsProduction(), err)
		return
	}

	// The prompt list the client sees must be the persisted one: on a
	// repeat call it is the earlier generation, possibly already rewritten.
	prompts := make([]string, len(rec.Prompts))
	for i, p := range rec.Prompts {
		prompts[i] = p.Question
	}

	h.redis.Del(ctx, todayStatusKey(userID))

	now := time.Now()
	c.JSON(http.StatusOK, questsmodels.GenerateQuestsResponse{
		Success:        true,
		Quests:         plan.Quests,
		MonthlyQuests:  plan.MonthlyQuests,
		JournalPrompts: prompts,
		GeneratedAt:    now,
		MonthGenerated: fmt.Sprintf("%d-%d", now.Year(), int(now.Month())),
	})
}
