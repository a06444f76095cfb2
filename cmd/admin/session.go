package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"

	"fitreport/internal/auth"
	"fitreport/internal/client"
)

var errNotLoggedIn = errors.New("로그인이 필요합니다 (admin login)")

// session is what login leaves on disk. Only its presence is checked; the token
// itself never expires.
type session struct {
	Token   string    `json:"token"`
	UserID  string    `json:"user_id"`
	Name    string    `json:"name"`
	Level   int       `json:"level"`
	SavedAt time.Time `json:"saved_at"`
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "fitreport", "session.json")
}

func saveSession(path string, s session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func loadSession(path string) (*session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s session
	if err := json.Unmarshal(raw, &s); err != nil || s.Token == "" {
		return nil, errNotLoggedIn
	}
	// 토큰 내용은 표시용으로만 읽는다
	if claims, err := auth.DecodeToken(s.Token); err == nil && s.UserID == "" {
		s.UserID = claims.UserID
	}
	return &s, nil
}

func clearSession(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// describeError turns an error into the line shown to the operator.
func describeError(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, huh.ErrUserAborted):
		return errCancelled.Error()
	}
	return err.Error()
}
