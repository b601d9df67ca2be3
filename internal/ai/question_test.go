package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubGen struct {
	out string
	err error
}

func (s stubGen) Generate(ctx context.Context, system, user string) (string, error) {
	return s.out, s.err
}

func TestFallbackQuestionKeywordTable(t *testing.T) {
	tests := []struct {
		name    string
		feeling string
		answer  string
		want    string
	}{
		{"stress", "work has me stressed", "long day", "What helps you feel calmer when you're stressed?"},
		{"anxious", "feeling anxious about the visa", "not sure", "What helps you feel calmer when you're stressed?"},
		{"lonely", "I feel so lonely here", "nobody calls", "What connections or relationships would you like to strengthen?"},
		{"isolated", "pretty isolated lately", "winter is long", "What connections or relationships would you like to strengthen?"},
		{"overwhelmed", "totally overwhelmed by the move", "too many boxes", "What's one small thing you could do today to feel less overwhelmed?"},
		{"sad", "just sad today", "miss home", "What usually helps lift your mood, even just a little?"},
		{"depressed", "been depressed all week", "hard to say", "What usually helps lift your mood, even just a little?"},
		{"no keyword", "a completely neutral day", "nothing much", "What do you think might help you feel better about this situation?"},
		{"keyword in newest answer", "okay I suppose", "honestly I am stressed about rent", "What helps you feel calmer when you're stressed?"},
		{"case insensitive", "SO STRESSED right now", "yeah", "What helps you feel calmer when you're stressed?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := []Exchange{
				{Question: "How are you feeling today?", Answer: tt.feeling},
				{Question: "Tell me more?", Answer: tt.answer},
			}
			assert.Equal(t, tt.want, FallbackQuestion(history))
		})
	}
}

func TestFallbackQuestionStressBeatsLaterRules(t *testing.T) {
	// Rules match in order, so text hitting both stress and sad keywords
	// resolves to the stress question.
	history := []Exchange{{Question: "How are you feeling today?", Answer: "stressed and sad"}}
	assert.Equal(t, "What helps you feel calmer when you're stressed?", FallbackQuestion(history))
}

func TestFallbackQuestionEmptyHistory(t *testing.T) {
	assert.Equal(t, defaultFallbackQuestion, FallbackQuestion(nil))
}

func TestFollowUpUsesGeneratedQuestion(t *testing.T) {
	g := NewQuestionGenerator(stubGen{out: "\"What part of that felt hardest?\"\n"}, nil)

	got := g.FollowUp(context.Background(), []Exchange{{Question: "How are you feeling today?", Answer: "tired"}})

	assert.Equal(t, "What part of that felt hardest?", got)
}

func TestFollowUpFallsBackOnError(t *testing.T) {
	g := NewQuestionGenerator(stubGen{err: errors.New("upstream down")}, nil)
	history := []Exchange{{Question: "How are you feeling today?", Answer: "lonely in the new city"}}

	got := g.FollowUp(context.Background(), history)

	assert.Equal(t, "What connections or relationships would you like to strengthen?", got)
}

func TestFollowUpFallsBackOnDegenerateOutput(t *testing.T) {
	g := NewQuestionGenerator(stubGen{out: "Why?"}, nil)
	history := []Exchange{{Question: "How are you feeling today?", Answer: "nothing in particular"}}

	got := g.FollowUp(context.Background(), history)

	assert.Equal(t, defaultFallbackQuestion, got)
}

func TestFollowUpCollapsesMultilineOutput(t *testing.T) {
	g := NewQuestionGenerator(stubGen{out: "What would a\nbetter morning\nlook like?"}, nil)

	got := g.FollowUp(context.Background(), []Exchange{{Question: "How are you feeling today?", Answer: "groggy"}})

	assert.Equal(t, "What would a better morning look like?", got)
}
