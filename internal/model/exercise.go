package model

type Exercise struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Category    string  `db:"category" json:"category"`
	Description *string `db:"description" json:"description"`
	IsPublic    bool    `db:"isPublic" json:"isPublic"`
	CreatedBy   *int64  `db:"createdBy" json:"createdBy"`
	CreatedAt   string  `db:"createdAt" json:"createdAt"`
}

// OwnedBy reports whether userID created the exercise.
func (e *Exercise) OwnedBy(userID int64) bool {
	return e.CreatedBy != nil && *e.CreatedBy == userID
}
