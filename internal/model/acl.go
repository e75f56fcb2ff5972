package model

const (
	ACLAllow    = "allow"
	ACLDisallow = "disallow"
)

type ACLRule struct {
	ID        int64  `db:"id" json:"id"`
	UserRoles string `db:"userRoles" json:"userRoles"`
	Method    string `db:"method" json:"method"`
	Route     string `db:"route" json:"route"`
	Allow     string `db:"allow" json:"allow"`
}
