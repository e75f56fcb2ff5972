package model

type Goal struct {
	ID           int64   `db:"id" json:"id"`
	UserID       int64   `db:"userId" json:"userId"`
	Title        string  `db:"title" json:"title"`
	Description  *string `db:"description" json:"description"`
	TargetValue  float64 `db:"targetValue" json:"targetValue"`
	CurrentValue float64 `db:"currentValue" json:"currentValue"`
	Unit         string  `db:"unit" json:"unit"`
	TargetDate   *string `db:"targetDate" json:"targetDate"`
	IsCompleted  bool    `db:"isCompleted" json:"isCompleted"`
	CreatedAt    string  `db:"createdAt" json:"createdAt"`
}

type GoalStats struct {
	Total           int64   `db:"total" json:"total"`
	Completed       int64   `db:"completed" json:"completed"`
	InProgress      int64   `db:"inProgress" json:"inProgress"`
	AverageProgress float64 `db:"averageProgress" json:"averageProgress"`
}
