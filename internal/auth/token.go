package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedToken is returned when a token is not base64-encoded JSON claims.
var ErrMalformedToken = errors.New("auth: malformed token")

// TokenClaims is the payload carried by a login token. Tokens are neither signed nor
// time-limited; they only identify who logged in and when.
type TokenClaims struct {
	ID        uint   `json:"id"`
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// IssuedAt returns the login time recorded in the claims.
func (c TokenClaims) IssuedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// EncodeToken serialises claims as base64(JSON).
func EncodeToken(claims TokenClaims) (string, error) {
	raw, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal token claims: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeToken is the inverse of EncodeToken.
func DecodeToken(token string) (TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenClaims{}, ErrMalformedToken
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	var claims TokenClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.UserID == "" {
		return TokenClaims{}, ErrMalformedToken
	}
	return claims, nil
}
