package models

import (
	"github.com/beaverbuddy/server/internal/journal"
)

type SubmitEntryResponse struct {
	Success             bool             `json:"success"`
	AlreadyAnswered     bool             `json:"alreadyAnswered,omitempty"`
	AIResponse          string           `json:"aiResponse,omitempty"`
	RemainingPrompts    int              `json:"remainingPrompts"`
	AllCompleted        bool             `json:"allCompleted"`
	AnsweredPromptIndex int              `json:"answeredPromptIndex"`
	TotalPrompts        int              `json:"totalPrompts"`
	UpdatedPrompts      []journal.Prompt `json:"updatedPrompts"`
}
