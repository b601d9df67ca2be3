package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaverbuddy/server/internal/ai"
	"github.com/beaverbuddy/server/internal/apperr"
)

// fakeStore keeps one record in memory and mimics the postgres store's
// save-with-completion behavior.
type fakeStore struct {
	rec         *DailyCycle
	mutateCalls int
	saves       int
}

func (f *fakeStore) LoadToday(ctx context.Context, userID string) (*DailyCycle, error) {
	if f.rec == nil {
		return nil, apperr.NotFound("No journal prompts found for today")
	}
	return f.rec, nil
}

func (f *fakeStore) List(ctx context.Context, userID string, limit int, startDate, endDate *time.Time) ([]DailyCycle, error) {
	if f.rec == nil {
		return nil, nil
	}
	return []DailyCycle{*f.rec}, nil
}

func (f *fakeStore) MutateToday(ctx context.Context, userID string, fn func(rec *DailyCycle) (bool, error)) (*DailyCycle, error) {
	f.mutateCalls++
	if f.rec == nil {
		return nil, apperr.NotFound("No journal prompts found for today")
	}
	changed, err := fn(f.rec)
	if err != nil {
		return nil, err
	}
	if changed {
		f.saves++
		if CountRemaining(f.rec.Prompts) == 0 && f.rec.CompletedAt == nil {
			now := time.Now().UTC()
			f.rec.CompletedAt = &now
		}
	}
	return f.rec, nil
}

func (f *fakeStore) CreateToday(ctx context.Context, userID, originalFeeling string, questions []string) (*DailyCycle, error) {
	prompts := make([]Prompt, len(questions))
	for i, q := range questions {
		prompts[i] = Prompt{Question: q}
	}
	f.rec = &DailyCycle{ID: "cycle-1", UserID: userID, OriginalFeeling: originalFeeling, Prompts: prompts}
	return f.rec, nil
}

type fakeFollowUp struct {
	question string
}

func (f fakeFollowUp) FollowUp(ctx context.Context, history []ai.Exchange) string {
	return f.question
}

type fakeComposer struct {
	reply string
	err   error
	calls int
	// captured context from the last call
	lastQuestion string
	lastHistory  []ai.Exchange
}

func (f *fakeComposer) Compose(ctx context.Context, question, answer string, history []ai.Exchange) (string, error) {
	f.calls++
	f.lastQuestion = question
	f.lastHistory = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// failingGen is a TextGenerator whose backing service is down.
type failingGen struct{}

func (failingGen) Generate(ctx context.Context, system, user string) (string, error) {
	return "", errors.New("connection refused")
}

func newTestEngine(store Store, followUp FollowUpGenerator, composer ReplyComposer) *Engine {
	return NewEngine(store, followUp, composer, nil)
}

func threePromptStore(feeling string) *fakeStore {
	store := &fakeStore{}
	store.CreateToday(context.Background(), "user-1", feeling, []string{
		"Question one?",
		"Question two?",
		"Is there anything else you'd like to talk about today?",
	})
	return store
}

func intPtr(i int) *int { return &i }

func TestSubmitRejectsShortAnswerWithoutTouchingStore(t *testing.T) {
	store := threePromptStore("feeling fine")
	engine := newTestEngine(store, fakeFollowUp{"next?"}, &fakeComposer{reply: "a reply"})

	_, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "ok")

	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Contains(t, apperr.Message(err), "at least 10 characters")
	assert.Zero(t, store.mutateCalls)
	assert.Zero(t, store.saves)
}

func TestSubmitRejectsMissingAndNegativeIndex(t *testing.T) {
	store := threePromptStore("feeling fine")
	engine := newTestEngine(store, fakeFollowUp{"next?"}, &fakeComposer{reply: "a reply"})

	_, err := engine.Submit(context.Background(), "user-1", nil, "", "a long enough answer")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = engine.Submit(context.Background(), "user-1", intPtr(-1), "", "a long enough answer")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Zero(t, store.saves)
}

func TestSubmitNoRecordForToday(t *testing.T) {
	engine := newTestEngine(&fakeStore{}, fakeFollowUp{"next?"}, &fakeComposer{reply: "a reply"})

	_, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "a long enough answer")

	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestSubmitIndexOutOfRange(t *testing.T) {
	store := threePromptStore("feeling fine")
	engine := newTestEngine(store, fakeFollowUp{"next?"}, &fakeComposer{reply: "a reply"})

	_, err := engine.Submit(context.Background(), "user-1", intPtr(3), "", "a long enough answer")

	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Zero(t, store.saves)
}

func TestSubmitHappyPathFirstSlot(t *testing.T) {
	store := threePromptStore("a bit tired today")
	composer := &fakeComposer{reply: "That sounds like a lot to carry, and it makes sense you feel that way."}
	engine := newTestEngine(store, fakeFollowUp{"What would help you rest tonight?"}, composer)

	res, err := engine.Submit(context.Background(), "user-1", intPtr(0), "Question one?", "I barely slept and work was rough")

	require.NoError(t, err)
	assert.False(t, res.AlreadyAnswered)
	assert.Equal(t, composer.reply, res.AIResponse)
	assert.Equal(t, 2, res.RemainingPrompts)
	assert.False(t, res.AllCompleted)
	assert.Equal(t, 0, res.AnsweredPromptIndex)
	assert.Equal(t, 3, res.TotalPrompts)
	require.Len(t, res.UpdatedPrompts, 3)

	// Slot 0 froze the question alongside the answer.
	require.NotNil(t, res.UpdatedPrompts[0].Answer)
	assert.Equal(t, "I barely slept and work was rough", *res.UpdatedPrompts[0].Answer)
	assert.NotNil(t, res.UpdatedPrompts[0].AnsweredAt)

	// Slot 1 was rewritten; slot 2 untouched.
	assert.Equal(t, "What would help you rest tonight?", res.UpdatedPrompts[1].Question)
	assert.Nil(t, res.UpdatedPrompts[1].Answer)
	assert.Equal(t, "Is there anything else you'd like to talk about today?", res.UpdatedPrompts[2].Question)
	assert.Equal(t, 1, store.saves)
}

func TestSubmitFallbackQuestionWhenGeneratorUnavailable(t *testing.T) {
	store := threePromptStore("everything is fine I guess")
	// Real question generator wired to a dead service: the submit must
	// still succeed and slot 1 must get the keyword fallback.
	questionGen := ai.NewQuestionGenerator(failingGen{}, nil)
	engine := newTestEngine(store, questionGen, &fakeComposer{reply: "I hear you, that sounds stressful and exhausting to deal with."})

	res, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "work has me so stressed out lately")

	require.NoError(t, err)
	assert.Equal(t, "What helps you feel calmer when you're stressed?", res.UpdatedPrompts[1].Question)
}

func TestSubmitDoesNotRewriteAnsweredSecondSlot(t *testing.T) {
	store := threePromptStore("fine")
	// Answer slot 1 first, then slot 0; the rewrite must not touch the
	// answered slot.
	composer := &fakeComposer{reply: "Thank you for sharing that with me today, it matters."}
	engine := newTestEngine(store, fakeFollowUp{"REWRITTEN"}, composer)

	_, err := engine.Submit(context.Background(), "user-1", intPtr(1), "", "answering the second one first")
	require.NoError(t, err)

	res, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "now answering the first one")
	require.NoError(t, err)

	assert.Equal(t, "Question two?", res.UpdatedPrompts[1].Question)
	require.NotNil(t, res.UpdatedPrompts[1].Answer)
	assert.Equal(t, "answering the second one first", *res.UpdatedPrompts[1].Answer)
}

func TestSubmitAlreadyAnsweredIsIdempotent(t *testing.T) {
	store := threePromptStore("fine")
	composer := &fakeComposer{reply: "That makes sense, and it's good you noticed it yourself."}
	engine := newTestEngine(store, fakeFollowUp{"next?"}, composer)

	first, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "the original answer text here")
	require.NoError(t, err)
	savesAfterFirst := store.saves

	second, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "a different answer entirely")
	require.NoError(t, err)
	third, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "a different answer entirely")
	require.NoError(t, err)

	assert.True(t, second.AlreadyAnswered)
	assert.True(t, third.AlreadyAnswered)
	assert.Equal(t, second.UpdatedPrompts, third.UpdatedPrompts)
	assert.Equal(t, *first.UpdatedPrompts[0].Answer, *second.UpdatedPrompts[0].Answer)
	assert.Equal(t, savesAfterFirst, store.saves)
	// No reply is composed for a no-op submit.
	assert.Equal(t, 1, composer.calls)
}

func TestSubmitHintMismatchConflict(t *testing.T) {
	store := threePromptStore("fine")
	engine := newTestEngine(store, fakeFollowUp{"next?"}, &fakeComposer{reply: "ok then, thank you for telling me about your day."})

	// Hint names a question that lives at a different index.
	_, err := engine.Submit(context.Background(), "user-1", intPtr(0), "Question two?", "a perfectly valid answer")

	require.Error(t, err)
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
	assert.Zero(t, store.saves)
}

func TestSubmitUnknownHintProceedsWithIndex(t *testing.T) {
	store := threePromptStore("fine")
	engine := newTestEngine(store, fakeFollowUp{"next?"}, &fakeComposer{reply: "I appreciate you writing this out today, truly."})

	res, err := engine.Submit(context.Background(), "user-1", intPtr(0), "A question nobody ever had?", "a perfectly valid answer")

	require.NoError(t, err)
	require.NotNil(t, res.UpdatedPrompts[0].Answer)
}

func TestSubmitComposerFailureLeavesAnswerPersisted(t *testing.T) {
	store := threePromptStore("fine")
	composer := &fakeComposer{err: apperr.ServiceUnavailable("Billy couldn't respond right now", errors.New("timeout"))}
	engine := newTestEngine(store, fakeFollowUp{"next?"}, composer)

	_, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "an answer that should be saved")

	require.Error(t, err)
	assert.Equal(t, apperr.CodeServiceUnavailable, apperr.CodeOf(err))
	assert.True(t, apperr.IsRetryable(err))

	// The answer survived the failed reply.
	require.NotNil(t, store.rec.Prompts[0].Answer)
	assert.Equal(t, "an answer that should be saved", *store.rec.Prompts[0].Answer)

	// A retry lands in the already-answered path.
	res, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "an answer that should be saved")
	require.NoError(t, err)
	assert.True(t, res.AlreadyAnswered)
}

func TestSubmitCompletionTransition(t *testing.T) {
	store := threePromptStore("fine")
	composer := &fakeComposer{reply: "You did the whole journal today, that's worth being proud of."}
	engine := newTestEngine(store, fakeFollowUp{"next?"}, composer)
	ctx := context.Background()

	res, err := engine.Submit(ctx, "user-1", intPtr(0), "", "first answer long enough")
	require.NoError(t, err)
	assert.Equal(t, 2, res.RemainingPrompts)
	assert.Nil(t, store.rec.CompletedAt)

	res, err = engine.Submit(ctx, "user-1", intPtr(1), "", "second answer long enough")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RemainingPrompts)
	assert.Nil(t, store.rec.CompletedAt)

	res, err = engine.Submit(ctx, "user-1", intPtr(2), "", "third answer long enough")
	require.NoError(t, err)
	assert.Equal(t, 0, res.RemainingPrompts)
	assert.True(t, res.AllCompleted)
	require.NotNil(t, store.rec.CompletedAt)
	completedAt := *store.rec.CompletedAt

	// Status reflects completion; completedAt does not move afterwards.
	status, err := engine.Status(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, status.IsCompleted)
	require.NotNil(t, status.CompletedAt)
	assert.Equal(t, completedAt, *status.CompletedAt)

	again, err := engine.Submit(ctx, "user-1", intPtr(2), "", "third answer long enough")
	require.NoError(t, err)
	assert.True(t, again.AlreadyAnswered)
	assert.Equal(t, completedAt, *store.rec.CompletedAt)
}

func TestSubmitComposerContextHoldsPriorAnswers(t *testing.T) {
	store := threePromptStore("fine")
	composer := &fakeComposer{reply: "It sounds like today had more wins than you first thought."}
	engine := newTestEngine(store, fakeFollowUp{"next?"}, composer)
	ctx := context.Background()

	_, err := engine.Submit(ctx, "user-1", intPtr(0), "", "the first answer of the day")
	require.NoError(t, err)
	_, err = engine.Submit(ctx, "user-1", intPtr(1), "", "the second answer of the day")
	require.NoError(t, err)

	require.Len(t, composer.lastHistory, 1)
	assert.Equal(t, "Question one?", composer.lastHistory[0].Question)
	assert.Equal(t, "the first answer of the day", composer.lastHistory[0].Answer)
}

func TestStatusWithoutRecord(t *testing.T) {
	engine := newTestEngine(&fakeStore{}, fakeFollowUp{"next?"}, &fakeComposer{})

	status, err := engine.Status(context.Background(), "user-1")

	require.NoError(t, err)
	assert.False(t, status.HasJournal)
}

func TestStatusOmitsAnswerText(t *testing.T) {
	store := threePromptStore("fine")
	engine := newTestEngine(store, fakeFollowUp{"next?"}, &fakeComposer{reply: "Noted, and thank you for being honest about it today."})

	_, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "something quite private here")
	require.NoError(t, err)

	status, err := engine.Status(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, status.Prompts, 3)
	assert.True(t, status.Prompts[0].IsAnswered)
	assert.NotNil(t, status.Prompts[0].AnsweredAt)
	assert.Equal(t, 1, status.AnsweredPrompts)
	assert.Equal(t, 2, status.RemainingPrompts)
}

func TestListEntriesAnnotatesCounts(t *testing.T) {
	store := threePromptStore("fine")
	engine := newTestEngine(store, fakeFollowUp{"next?"}, &fakeComposer{reply: "Taking time to reflect like this is a real habit win."})

	_, err := engine.Submit(context.Background(), "user-1", intPtr(0), "", "an answer for the listing")
	require.NoError(t, err)

	views, err := engine.ListEntries(context.Background(), "user-1", 0, nil, nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 3, views[0].TotalPrompts)
	assert.Equal(t, 1, views[0].AnsweredPrompts)
}
