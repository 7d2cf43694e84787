package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin is a dashboard account. Every admin sees the same journal.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials is the body of the register and login endpoints
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
	Username   string    `json:"username"`
}

// Claims represents the JWT claims structure
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}
