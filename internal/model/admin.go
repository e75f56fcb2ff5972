package model

type AdminStats struct {
	TotalUsers     int64 `db:"totalUsers" json:"totalUsers"`
	AdminUsers     int64 `db:"adminUsers" json:"adminUsers"`
	TotalWorkouts  int64 `db:"totalWorkouts" json:"totalWorkouts"`
	TotalExercises int64 `db:"totalExercises" json:"totalExercises"`
	TotalGoals     int64 `db:"totalGoals" json:"totalGoals"`
	ActiveSessions int64 `db:"activeSessions" json:"activeSessions"`
}
