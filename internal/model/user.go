package model

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64  `db:"Id" json:"Id"`
	Email        string `db:"Email" json:"Email"`
	Username     string `db:"Username" json:"Username"`
	PasswordHash string `db:"PasswordHash" json:"-"`
	Role         string `db:"Role" json:"Role"`
	CreatedAt    string `db:"CreatedAt" json:"CreatedAt"`
}

// PublicUser is the user projection stored in sessions and returned to clients.
type PublicUser struct {
	ID        int64  `db:"Id" json:"Id"`
	Email     string `db:"Email" json:"Email"`
	Username  string `db:"Username" json:"Username"`
	Role      string `db:"Role" json:"Role"`
	CreatedAt string `db:"CreatedAt" json:"CreatedAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (u *PublicUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
