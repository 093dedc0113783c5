package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	contextUserID = "user_id"
	contextEmail  = "user_email"

	DefaultTokenTTL = 7 * 24 * time.Hour
)

// knowledge-base owners are identified solely by the token subject
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// issues and validates HS256 bearer tokens
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}
