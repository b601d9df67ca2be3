package models

import (
	"time"

	"github.com/beaverbuddy/server/internal/journal"
)

// Progress fields are pointers so that a response without a journal omits
// them entirely while a real status always carries them, zero values
// included: a fresh journal has answeredPrompts 0 and isCompleted false, and
// a finished one has remainingPrompts 0.
type TodayStatusResponse struct {
	HasJournal       bool                   `json:"hasJournal"`
	Message          string                 `json:"message,omitempty"`
	TotalPrompts     *int                   `json:"totalPrompts,omitempty"`
	AnsweredPrompts  *int                   `json:"answeredPrompts,omitempty"`
	RemainingPrompts *int                   `json:"remainingPrompts,omitempty"`
	IsCompleted      *bool                  `json:"isCompleted,omitempty"`
	CompletedAt      *time.Time             `json:"completedAt,omitempty"`
	Prompts          []journal.PromptStatus `json:"prompts,omitempty"`
}
