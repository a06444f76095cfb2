package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitreport/internal/database"
	"fitreport/internal/datastore"
)

var (
	ErrMissingCredentials = errors.New("auth: user id and password are required")
	ErrInvalidCredentials = errors.New("auth: invalid user id or password")
	ErrInactiveAccount    = errors.New("auth: account is inactive")
)

// AuthService checks credentials and issues login tokens.
type AuthService struct {
	users datastore.Table[database.User]
	now   func() time.Time
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token  string
	Claims TokenClaims
	User   database.User
}

// NewAuthService returns an AuthService reading accounts through store.
func NewAuthService(store *datastore.Client) *AuthService {
	return &AuthService{
		users: datastore.From[database.User](store),
		now:   time.Now,
	}
}

// Login checks the credentials of userID. Unknown accounts and wrong passwords both yield
// ErrInvalidCredentials; a matching but inactive account yields ErrInactiveAccount.
func (s *AuthService) Login(ctx context.Context, userID, password string) (*LoginResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.First(ctx, datastore.Query{
		Filters: []datastore.Filter{datastore.Eq("user_id", userID)},
		Preload: map[string][]string{"Position": {"id", "name", "level"}},
	})
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if user.Status != database.UserStatusActive {
		return nil, ErrInactiveAccount
	}

	claims := TokenClaims{ID: user.ID, UserID: user.UserID, Timestamp: s.now().UnixMilli()}
	token, err := EncodeToken(claims)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Claims: claims, User: *user}, nil
}
