package models

import "time"

type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Points        int        `json:"points"`
	CurrentStreak int        `json:"currentStreak"`
	LastLoginDate *time.Time `json:"lastLoginDate"`
	CreatedAt     time.Time  `json:"createdAt"`
}
