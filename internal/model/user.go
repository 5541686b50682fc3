package model

import "time"

// User is a staff account. Players do not need one: quizzes can be taken
// anonymously, an account only attaches quizzes to an identity and unlocks
// question management.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	// CanViewAll grants read access to other players' finished quizzes.
	CanViewAll bool      `json:"can_view_all"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoginRequest is the credentials payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
