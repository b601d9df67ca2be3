package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/beaverbuddy/server/internal/apperr"
)

// Quest is one generated task with its maple-point reward.
type Quest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category"`
}

// DailyPlan is the full generation result for one mood check-in: the day's
// quests, the month's quests, and the journal prompt sequence.
type DailyPlan struct {
	Quests         []Quest  `json:"quests"`
	MonthlyQuests  []Quest  `json:"monthlyQuests"`
	JournalPrompts []string `json:"journalPrompts"`
}

// ClosingPrompt is always the final journal question so the user can write
// freely about anything the generated questions missed.
const ClosingPrompt = "Is there anything else you'd like to talk about today?"

const questPersona = `You help Canadian immigrants with mental health and cultural isolation. The user tells you how they're feeling today and why. Generate 4 personalized Daily Quests: 2 Emotional Quests that directly help with their current situation, and 2 Cultural Quests unrelated to their situation that help them get comfortable with Canada's local culture. Also generate 2 Monthly Quests: purely cultural, bigger events involving more money, people, and planning (concerts, sports games, conventions, landmarks). Finally generate 3 follow-up journal questions based on their feelings that let them reflect in depth; the 3rd question must always be exactly: "` + ClosingPrompt + `". Use category "mental_health" for Emotional Quests and "cultural" for Cultural Quests. Daily quest points are 10-50; monthly quest points are 100-500 by difficulty. Respond with ONLY valid JSON in this shape (no extra text): {"quests":[{"title":"","description":"","points":20,"difficulty":"easy","category":"mental_health"}],"monthlyQuests":[{"title":"","description":"","points":500,"difficulty":"hard","category":"cultural"}],"journalPrompts":["","",""]}`

// QuestGenerator turns a mood check-in into the day's quest and prompt plan.
type QuestGenerator struct {
	gen    TextGenerator
	logger *zap.SugaredLogger
}

func NewQuestGenerator(gen TextGenerator, logger *zap.SugaredLogger) *QuestGenerator {
	return &QuestGenerator{gen: gen, logger: logger}
}

// GeneratePlan calls the generation service and parses its JSON output.
// Generation failures here are user-visible: unlike the follow-up question
// rewrite there is no deterministic plan to fall back to.
func (g *QuestGenerator) GeneratePlan(ctx context.Context, feeling string) (*DailyPlan, error) {
	out, err := g.gen.Generate(ctx, questPersona, fmt.Sprintf("User's feeling: %q", feeling))
	if err != nil {
		return nil, apperr.ServiceUnavailable("Failed to generate quests. Please try again.", err)
	}

	plan, err := parsePlan(out)
	if err != nil {
		if g.logger != nil {
			g.logger.Errorw("quest generation returned unparseable output", "error", err, "output", out)
		}
		return nil, apperr.ServiceUnavailable("Failed to generate valid quests. Please try again.", err)
	}
	return plan, nil
}

var (
	codeFenceRe     = regexp.MustCompile("```(?:json)?")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// parsePlan extracts the JSON object from raw model output, repairs the
// usual formatting damage (code fences, trailing commas), and validates the
// structure.
func parsePlan(content string) (*DailyPlan, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, errors.New("no JSON object in response")
	}

	jsonStr := content[start : end+1]
	jsonStr = codeFenceRe.ReplaceAllString(jsonStr, "")
	jsonStr = trailingCommaRe.ReplaceAllString(jsonStr, "$1")

	var plan DailyPlan
	if err := json.Unmarshal([]byte(jsonStr), &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}

	if len(plan.Quests) != 4 {
		return nil, fmt.Errorf("expected 4 daily quests, got %d", len(plan.Quests))
	}
	if len(plan.MonthlyQuests) != 2 {
		return nil, fmt.Errorf("expected 2 monthly quests, got %d", len(plan.MonthlyQuests))
	}
	if len(plan.JournalPrompts) != 3 {
		return nil, fmt.Errorf("expected 3 journal prompts, got %d", len(plan.JournalPrompts))
	}
	// The closing prompt is part of the product contract; repair it rather
	// than rejecting an otherwise usable plan.
	plan.JournalPrompts[2] = ClosingPrompt

	return &plan, nil
}
