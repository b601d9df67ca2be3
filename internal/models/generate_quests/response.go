package models

import (
	"time"

	"github.com/beaverbuddy/server/internal/ai"
)

type GenerateQuestsResponse struct {
	Success        bool       `json:"success"`
	Quests         []ai.Quest `json:"quests"`
	MonthlyQuests  []ai.Quest `json:"monthlyQuests"`
	JournalPrompts []string   `json:"journalPrompts"`
	GeneratedAt    time.Time  `json:"generatedAt"`
	MonthGenerated string     `json:"monthGenerated"`
}
