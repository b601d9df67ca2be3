package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/beaverbuddy/server/internal/apperr"
	"github.com/beaverbuddy/server/internal/config"
	"github.com/beaverbuddy/server/internal/journal"
	submitmodels "github.com/beaverbuddy/server/internal/models/submit_entry"
)

type JournalHandler struct {
	engine *journal.Engine
	redis  *redis.Client
	cfg    config.Config
	logger *zap.SugaredLogger
}

func NewJournalHandler(engine *journal.Engine, redisClient *redis.Client, cfg config.Config, logger *zap.SugaredLogger) *JournalHandler {
	return &JournalHandler{
		engine: engine,
		redis:  redisClient,
		cfg:    cfg,
		logger: logger,
	}
}

func todayStatusKey(userID string) string {
	return "journal:today:" + userID
}

// Submit records one prompt answer and returns the companion's reply. A 503
// from this endpoint means the answer WAS saved and only the reply failed;
// clients must re-fetch today's status instead of resubmitting.
func (h *JournalHandler) Submit(c *gin.Context) {
	var req submitmodels.SubmitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := userFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx := context.Background()

	result, err := h.engine.Submit(ctx, userID, req.PromptIndex, req.Prompt, req.Answer)
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeValidation && apperr.CodeOf(err) != apperr.CodeNotFound {
			h.logError(c, err, "journal submit failed", "prompt_index", req.PromptIndex)
		}
		// The submit may have persisted the answer before a retryable
		// failure; the cached status is stale either way.
		h.redis.Del(ctx, todayStatusKey(userID))
		respondError(c, h.cfg.IsProduction(), err)
		return
	}

	h.redis.Del(ctx, todayStatusKey(userID))

	if result.AlreadyAnswered {
		c.JSON(http.StatusOK, submitmodels.SubmitEntryResponse{
			Success:             true,
			AlreadyAnswered:     true,
			RemainingPrompts:    result.RemainingPrompts,
			AllCompleted:        result.AllCompleted,
			AnsweredPromptIndex: result.AnsweredPromptIndex,
			TotalPrompts:        result.TotalPrompts,
			UpdatedPrompts:      result.UpdatedPrompts,
		})
		return
	}

	c.JSON(http.StatusOK, submitmodels.SubmitEntryResponse{
		Success:             true,
		AIResponse:          result.AIResponse,
		RemainingPrompts:    result.RemainingPrompts,
		AllCompleted:        result.AllCompleted,
		AnsweredPromptIndex: result.AnsweredPromptIndex,
		TotalPrompts:        result.TotalPrompts,
		UpdatedPrompts:      result.UpdatedPrompts,
	})
}
