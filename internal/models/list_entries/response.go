package models

import (
	"time"

	"github.com/beaverbuddy/server/internal/journal"
)

type Entry struct {
	ID              string           `json:"id"`
	Date            time.Time        `json:"date"`
	JournalPrompts  []journal.Prompt `json:"journalPrompts"`
	CompletedAt     *time.Time       `json:"completedAt"`
	CreatedAt       time.Time        `json:"createdAt"`
	TotalPrompts    int              `json:"totalPrompts"`
	AnsweredPrompts int              `json:"answeredPrompts"`
}

type ListEntriesResponse struct {
	Entries []Entry `json:"entries"`
	Count   int     `json:"count"`
	Limit   int     `json:"limit"`
}
