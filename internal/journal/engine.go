package journal

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/beaverbuddy/server/internal/ai"
	"github.com/beaverbuddy/server/internal/apperr"
)

// seedQuestion labels the original mood check-in when it is replayed as
// conversation context for generation.
const seedQuestion = "How are you feeling today?"

// FollowUpGenerator rewrites the next question from conversation context.
// Implementations never fail; they fall back internally.
type FollowUpGenerator interface {
	FollowUp(ctx context.Context, history []ai.Exchange) string
}

// ReplyComposer produces the empathetic reply to a submitted answer.
type ReplyComposer interface {
	Compose(ctx context.Context, question, answer string, history []ai.Exchange) (string, error)
}

// Engine drives the journal progression state machine: NotStarted ->
// InProgress(k) -> Completed, where k is the count of answered slots.
type Engine struct {
	store     Store
	questions FollowUpGenerator
	composer  ReplyComposer
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewEngine(store Store, questions FollowUpGenerator, composer ReplyComposer, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		store:     store,
		questions: questions,
		composer:  composer,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitResult is everything the client needs to reconcile after a submit
// without re-fetching.
type SubmitResult struct {
	AlreadyAnswered     bool
	AIResponse          string
	RemainingPrompts    int
	AllCompleted        bool
	AnsweredPromptIndex int
	TotalPrompts        int
	UpdatedPrompts      []Prompt
}

// Submit records the answer for one prompt slot. The answer is persisted
// before the reply is composed, so a composition failure leaves the answer
// saved and surfaces as a retryable error.
func (e *Engine) Submit(ctx context.Context, userID string, promptIndex *int, promptHint, rawAnswer string) (*SubmitResult, error) {
	if err := ValidatePromptIndex(promptIndex); err != nil {
		return nil, err
	}
	if err := ValidateAnswer(rawAnswer); err != nil {
		return nil, err
	}
	idx := *promptIndex

	alreadyAnswered := false
	rec, err := e.store.MutateToday(ctx, userID, func(rec *DailyCycle) (bool, error) {
		if len(rec.Prompts) == 0 {
			return false, apperr.Internal("Invalid journal prompts data", nil)
		}
		if idx >= len(rec.Prompts) {
			return false, apperr.Validation(fmt.Sprintf("Invalid prompt index: %d. Only %d prompts available.", idx, len(rec.Prompts)))
		}

		if promptHint != "" && rec.Prompts[idx].Question != promptHint {
			if found := findByQuestion(rec.Prompts, promptHint); found != -1 && found != idx {
				// The client's view of the prompt list is stale. Refusing is
				// safer than guessing which slot was meant.
				return false, apperr.Conflict("Prompt index mismatch. Please refresh and try again.")
			}
			if e.logger != nil {
				e.logger.Warnw("prompt hint does not match any slot, trusting index",
					"user_id", userID, "prompt_index", idx, "hint", promptHint)
			}
		}

		if rec.Prompts[idx].IsAnswered() {
			alreadyAnswered = true
			return false, nil
		}

		sanitized := SanitizeAnswer(rawAnswer)
		answeredAt := e.now().UTC()
		rec.Prompts[idx] = Prompt{
			Question:   rec.Prompts[idx].Question,
			Answer:     &sanitized,
			AnsweredAt: &answeredAt,
		}

		if idx == 0 && len(rec.Prompts) > 1 {
			e.rewriteNextQuestion(ctx, rec, sanitized)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{
		AlreadyAnswered:     alreadyAnswered,
		RemainingPrompts:    CountRemaining(rec.Prompts),
		AllCompleted:        CountRemaining(rec.Prompts) == 0,
		AnsweredPromptIndex: idx,
		TotalPrompts:        len(rec.Prompts),
		UpdatedPrompts:      rec.Prompts,
	}
	if alreadyAnswered {
		return result, nil
	}

	question := rec.Prompts[idx].Question
	answer := ""
	if rec.Prompts[idx].Answer != nil {
		answer = *rec.Prompts[idx].Answer
	}
	reply, err := e.composer.Compose(ctx, question, answer, e.conversationContext(rec, idx))
	if err != nil {
		// The answer is already durable; only the reply is missing. The
		// client must re-fetch status rather than resubmit.
		return nil, err
	}
	result.AIResponse = reply
	return result, nil
}

// rewriteNextQuestion is the slot-zero transition of the state machine:
// answering the first prompt rewrites the second prompt's question around
// what the user actually said. Answered slots are never touched, and the
// generator falls back internally, so this transition cannot fail a submit.
func (e *Engine) rewriteNextQuestion(ctx context.Context, rec *DailyCycle, firstAnswer string) {
	if rec.Prompts[1].IsAnswered() {
		return
	}
	history := []ai.Exchange{
		{Question: seedQuestion, Answer: rec.OriginalFeeling},
		{Question: rec.Prompts[0].Question, Answer: firstAnswer},
	}
	rec.Prompts[1].Question = e.questions.FollowUp(ctx, history)
}

// conversationContext collects the answered slots before idx as generation
// context, oldest first.
func (e *Engine) conversationContext(rec *DailyCycle, idx int) []ai.Exchange {
	var history []ai.Exchange
	for i := 0; i < idx && i < len(rec.Prompts); i++ {
		p := rec.Prompts[i]
		if p.IsAnswered() {
			history = append(history, ai.Exchange{Question: p.Question, Answer: *p.Answer})
		}
	}
	return history
}

func findByQuestion(prompts []Prompt, question string) int {
	for i, p := range prompts {
		if p.Question == question {
			return i
		}
	}
	return -1
}

// EntryView is a listed record annotated with completion counts.
type EntryView struct {
	DailyCycle
	TotalPrompts    int
	AnsweredPrompts int
}

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// ListEntries returns the user's records newest-first. limit <= 0 selects
// the default; anything above the cap is clamped.
func (e *Engine) ListEntries(ctx context.Context, userID string, limit int, startDate, endDate *time.Time) ([]EntryView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	cycles, err := e.store.List(ctx, userID, limit, startDate, endDate)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, len(cycles))
	for i, cycle := range cycles {
		views[i] = EntryView{
			DailyCycle:      cycle,
			TotalPrompts:    len(cycle.Prompts),
			AnsweredPrompts: CountAnswered(cycle.Prompts),
		}
	}
	return views, nil
}

// PromptStatus is the summary view of one slot; answer text is omitted.
type PromptStatus struct {
	Question   string     `json:"question"`
	IsAnswered bool       `json:"isAnswered"`
	AnsweredAt *time.Time `json:"answeredAt"`
}

// TodayStatus describes today's record, if any.
type TodayStatus struct {
	HasJournal       bool
	TotalPrompts     int
	AnsweredPrompts  int
	RemainingPrompts int
	IsCompleted      bool
	CompletedAt      *time.Time
	Prompts          []PromptStatus
}

// Status reports today's progress without exposing answer text.
func (e *Engine) Status(ctx context.Context, userID string) (*TodayStatus, error) {
	rec, err := e.store.LoadToday(ctx, userID)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return &TodayStatus{HasJournal: false}, nil
		}
		return nil, err
	}

	answered := CountAnswered(rec.Prompts)
	status := &TodayStatus{
		HasJournal:       true,
		TotalPrompts:     len(rec.Prompts),
		AnsweredPrompts:  answered,
		RemainingPrompts: len(rec.Prompts) - answered,
		IsCompleted:      answered == len(rec.Prompts),
		CompletedAt:      rec.CompletedAt,
		Prompts:          make([]PromptStatus, len(rec.Prompts)),
	}
	for i, p := range rec.Prompts {
		status.Prompts[i] = PromptStatus{
			Question:   p.Question,
			IsAnswered: p.IsAnswered(),
			AnsweredAt: p.AnsweredAt,
		}
	}
	return status, nil
}
