package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Exchange is one question/answer pair used as generation context.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

const questionPersona = `You are Billy, a warm and caring beaver companion in a wellness app for newcomers to Canada. You speak simply and kindly, never clinically. The user is working through their daily reflection journal. Based on the conversation so far, ask exactly ONE thoughtful follow-up question that helps them go deeper into what they shared. Output only the question itself - no preamble, no quotes, no explanations.`

// minQuestionLength rejects degenerate generator output such as "Why?".
const minQuestionLength = 10

// fallbackRules map mood keywords to a deterministic follow-up question.
// Checked in order against the seed feeling plus the newest answer; first
// match wins.
var fallbackRules = []struct {
	keywords []string
	question string
}{
	{[]string{"stress", "anxious"}, "What helps you feel calmer when you're stressed?"},
	{[]string{"lonely", "isolated"}, "What connections or relationships would you like to strengthen?"},
	{[]string{"overwhelm"}, "What's one small thing you could do today to feel less overwhelmed?"},
	{[]string{"sad", "depressed"}, "What usually helps lift your mood, even just a little?"},
}

const defaultFallbackQuestion = "What do you think might help you feel better about this situation?"

// QuestionGenerator rewrites the next journal question around what the user
// actually said. It never returns an error: any generation failure falls
// back to a keyword-matched question.
type QuestionGenerator struct {
	gen    TextGenerator
	logger *zap.SugaredLogger
}

func NewQuestionGenerator(gen TextGenerator, logger *zap.SugaredLogger) *QuestionGenerator {
	return &QuestionGenerator{gen: gen, logger: logger}
}

// FollowUp produces one follow-up question from the conversation so far.
// history holds the seed mood exchange first, then any answered prompts.
func (g *QuestionGenerator) FollowUp(ctx context.Context, history []Exchange) string {
	out, err := g.gen.Generate(ctx, questionPersona, buildQuestionPrompt(history))
	if err != nil {
		if g.logger != nil {
			g.logger.Warnw("follow-up generation failed, using fallback", "error", err)
		}
		return FallbackQuestion(history)
	}

	question := CollapseNewlines(Clean(out))
	if len(question) < minQuestionLength {
		if g.logger != nil {
			g.logger.Warnw("follow-up generation returned unusable output, using fallback", "output", question)
		}
		return FallbackQuestion(history)
	}
	return question
}

func buildQuestionPrompt(history []Exchange) string {
	var b strings.Builder
	b.WriteString("Here is the conversation so far:\n\n")
	for _, ex := range history {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", ex.Question, ex.Answer)
	}
	b.WriteString("Ask one follow-up question.")
	return b.String()
}

// FallbackQuestion picks a deterministic follow-up by keyword-matching the
// seed feeling and the most recent answer.
func FallbackQuestion(history []Exchange) string {
	var parts []string
	if len(history) > 0 {
		parts = append(parts, history[0].Answer)
		parts = append(parts, history[len(history)-1].Answer)
	}
	text := strings.ToLower(strings.Join(parts, " "))

	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.question
			}
		}
	}
	return defaultFallbackQuestion
}
