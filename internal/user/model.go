package user

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose password hash in JSON
	CreatedAt    string `json:"created_at"`
}
