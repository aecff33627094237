package models

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateID        = errors.New("duplicate record id")
)

// Entity is implemented by every record an admin can create or delete.
type Entity[T any] interface {
	EntityID() string
	WithID(id string) T
}

type Socials struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

func (s Socials) Empty() bool {
	return s.Facebook == "" && s.Instagram == "" && s.LinkedIn == ""
}

type Claims struct {
	jwt.RegisteredClaims
	AdminID string `json:"adminID"`
	Email   string `json:"email"`
}

type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type LoginCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	Data  struct {
		Admin Admin `json:"admin"`
	} `json:"data"`
}
