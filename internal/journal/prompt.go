package journal

import (
	"encoding/json"
	"time"
)

// Prompt is one slot in a day's journal sequence. An unanswered slot has a
// nil Answer and nil AnsweredAt; once answered, the slot is frozen.
type Prompt struct {
	Question   string     `json:"question"`
	Answer     *string    `json:"answer"`
	AnsweredAt *time.Time `json:"answeredAt"`
}

// promptObject mirrors Prompt without its UnmarshalJSON method so the
// object form can be decoded without recursing.
type promptObject struct {
	Question   string     `json:"question"`
	Answer     *string    `json:"answer"`
	AnsweredAt *time.Time `json:"answeredAt"`
}

// UnmarshalJSON accepts both the current object form and the legacy bare
// string form, where a string means an unanswered question. Records written
// before the object migration still carry strings, so every read must go
// through this path.
func (p *Prompt) UnmarshalJSON(data []byte) error {
	var question string
	if err := json.Unmarshal(data, &question); err == nil {
		*p = Prompt{Question: question}
		return nil
	}
	var obj promptObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = Prompt(obj)
	return nil
}

// IsAnswered reports whether the slot has been answered.
func (p Prompt) IsAnswered() bool {
	return p.Answer != nil
}

// CountRemaining returns the number of unanswered slots.
func CountRemaining(prompts []Prompt) int {
	remaining := 0
	for _, p := range prompts {
		if !p.IsAnswered() {
			remaining++
		}
	}
	return remaining
}

// CountAnswered returns the number of answered slots.
func CountAnswered(prompts []Prompt) int {
	return len(prompts) - CountRemaining(prompts)
}
