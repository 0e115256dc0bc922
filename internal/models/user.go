package models

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         Role      `json:"role" gorm:"not null"`
	FirstName    string    `json:"first_name" gorm:"size:100"`
	LastName     string    `json:"last_name" gorm:"size:100"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is the privilege level carried in tokens. The integer encoding is
// stable: it is persisted and embedded in signed tokens.
type Role int

const (
	RoleAdmin Role = 0
	RoleUser  Role = 1
)

var roleNames = map[Role]string{
	RoleAdmin: "Admin",
	RoleUser:  "User",
}

// LowestRole is assigned to every self-registered account.
const LowestRole = RoleUser

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Roles returns every role name mapped to its numeric value.
func Roles() map[string]int {
	out := make(map[string]int, len(roleNames))
	for role, name := range roleNames {
		out[name] = int(role)
	}
	return out
}

// NormalizeUsername gives the single collation used for usernames:
// surrounding whitespace trimmed, compared case-insensitively.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Identity is the verified caller handed from the authorization gate to
// handlers and services.
type Identity struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type SignUpRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is the result of a successful login.
type Token struct {
	Token       string        `json:"token"`
	TokenID     string        `json:"token_id"`
	UserID      int           `json:"user_id"`
	Username    string        `json:"username"`
	Role        Role          `json:"role"`
	IssuedAt    time.Time     `json:"issued_at"`
	ExpiredTime time.Time     `json:"expired_time"`
	Validity    time.Duration `json:"-"`
}

// TokenResponse is the wire form of Token.
type TokenResponse struct {
	Token       string    `json:"token"`
	TokenID     string    `json:"token_id"`
	UserID      int       `json:"user_id"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	RoleName    string    `json:"role_name"`
	Validity    string    `json:"validity"`
	ValiditySec int64     `json:"validity_seconds"`
	ExpiredTime time.Time `json:"expired_time"`
}

func (t *Token) Response() TokenResponse {
	return TokenResponse{
		Token:       t.Token,
		TokenID:     t.TokenID,
		UserID:      t.UserID,
		Username:    t.Username,
		Role:        t.Role,
		RoleName:    t.Role.String(),
		Validity:    t.Validity.String(),
		ValiditySec: int64(t.Validity / time.Second),
		ExpiredTime: t.ExpiredTime,
	}
}
