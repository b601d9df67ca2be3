package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/beaverbuddy/server/internal/apperr"
)

const replyPersona = `You are Billy, a warm and caring beaver companion in a wellness app for newcomers to Canada. The user just answered a journal reflection question. Respond with empathy in 4-6 sentences: be specific about what they shared, validate how they feel, and offer gentle encouragement. Do NOT ask any follow-up question. Do NOT give clinical advice. Output only your response - no preamble and no quotes.`

// minReplyLength guards against truncated or single-phrase replies; a real
// 4-6 sentence response is always longer than this.
const minReplyLength = 50

const replyUnavailableMessage = "Billy couldn't respond right now, but your answer was saved. Please refresh to continue."

// ResponseComposer produces the empathetic reply shown after each submitted
// answer. There is no fallback: the caller has already persisted the answer,
// so failures surface as retryable errors and must not be papered over with
// canned text.
type ResponseComposer struct {
	gen    TextGenerator
	logger *zap.SugaredLogger
}

func NewResponseComposer(gen TextGenerator, logger *zap.SugaredLogger) *ResponseComposer {
	return &ResponseComposer{gen: gen, logger: logger}
}

// Compose generates a reply to the answer just given. history holds the
// previously answered prompts, oldest first.
func (c *ResponseComposer) Compose(ctx context.Context, question, answer string, history []Exchange) (string, error) {
	out, err := c.gen.Generate(ctx, replyPersona, buildReplyPrompt(question, answer, history))
	if err != nil {
		if c.logger != nil {
			c.logger.Errorw("reply composition failed", "error", err)
		}
		return "", apperr.ServiceUnavailable(replyUnavailableMessage, err)
	}

	reply := Clean(out)
	if len(reply) < minReplyLength {
		if c.logger != nil {
			c.logger.Errorw("reply composition returned unusable output", "output", reply)
		}
		return "", apperr.ServiceUnavailable(replyUnavailableMessage, errors.New("generated reply too short"))
	}
	return reply, nil
}

func buildReplyPrompt(question, answer string, history []Exchange) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Earlier in today's journal:\n\n")
		for _, ex := range history {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", ex.Question, ex.Answer)
		}
	}
	fmt.Fprintf(&b, "The user was just asked: %s\n\nThey answered: %s\n\nRespond to them now.", question, answer)
	return b.String()
}
