package entity

import "time"

// User dueño de productos. Se autentica con JWT o con su APIKey.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt
	APIKey       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
