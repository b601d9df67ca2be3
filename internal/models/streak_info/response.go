package models

import "time"

type StreakInfoResponse struct {
	CurrentStreak int        `json:"currentStreak"`
	LastLoginDate *time.Time `json:"lastLoginDate"`
	Points        int        `json:"points"`
}
