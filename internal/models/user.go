package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Timestamps is embedded by value in persisted entities. The repository sets
// both fields explicitly at write time.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type User struct {
	ID           int64  `json:"id" dynamodbav:"id"`
	Email        string `json:"email" dynamodbav:"email"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	Name         string `json:"name" dynamodbav:"name"`
	Role         Role   `json:"role" dynamodbav:"role"`
	Timestamps
}

func (u *User) GetPK() string {
	return "USER#" + u.Email
}

func (u *User) GetSK() string {
	return "METADATA"
}

// Principal returns the identity that tokens issued for u carry.
func (u *User) Principal() Principal {
	return Principal{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	}
}

// Principal is the authenticated identity resolved from an access token.
type Principal struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
