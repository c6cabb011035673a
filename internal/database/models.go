package database

import "github.com/uptrace/bun"

// Constraint names created by the migrations. Repositories match on them to
// tell an id collision apart from a duplicate email or a missing owner.
const (
	ConstraintUsersPK      = "users_pkey"
	ConstraintUsersEmail   = "users_email_key"
	ConstraintItemsPK      = "items_pkey"
	ConstraintItemsOwnerFK = "items_user_id_fkey"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string `bun:"id,pk"`
	Email        string `bun:"email,notnull"`
	PasswordHash string `bun:"password_hash,notnull"`
	CreatedAt    string `bun:"created_at,notnull"`
}

type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID          string `bun:"id,pk"`
	Title       string `bun:"title,notnull"`
	Description string `bun:"description,notnull"`
	Status      string `bun:"status,notnull"`
	Timestamp   string `bun:"timestamp,notnull"`
	UserID      string `bun:"user_id,notnull"`
}
