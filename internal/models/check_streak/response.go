package models

type CheckStreakResponse struct {
	CurrentStreak   int  `json:"currentStreak"`
	ShouldShowPopup bool `json:"shouldShowPopup"`
	PointsAwarded   int  `json:"pointsAwarded"`
	TodayPrize      int  `json:"todayPrize"`
}
