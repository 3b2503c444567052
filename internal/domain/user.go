package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	Email        string    `dynamodbav:"email"         json:"email"`
	UserID       string    `dynamodbav:"user_id"       json:"id"`
	Name         string    `dynamodbav:"name"          json:"name"`
	PasswordHash string    `dynamodbav:"password_hash" json:"-"`
	Role         Role      `dynamodbav:"role"          json:"role"`
	CreatedAt    time.Time `dynamodbav:"created_at"    json:"createdAt"`
}

type RegisterRequest struct {
	Name     string `json:"name"     binding:"required"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
