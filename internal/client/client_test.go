package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_StoresToken(t *testing.T) {
	var lastAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		lastAuth.Store(r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "park03", body["user_id"])
			writeJSON(w, http.StatusOK, map[string]any{
				"message": "로그인 성공",
				"token":   "tok123",
				"admin":   map[string]any{"id": 1, "user_id": "park03", "position": map[string]any{"name": "대표", "level": 1}},
			})
		case "/api/documents/notification-count":
			writeJSON(w, http.StatusOK, map[string]int{"count": 3, "revision": 1, "rejected": 2})
		case "/api/auth/logout":
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, APIKey: "anon-key"})
	ctx := context.Background()

	resp, err := c.Login(ctx, "park03", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok123", resp.Token)
	require.NotNil(t, resp.Admin.Position)
	assert.Equal(t, 1, resp.Admin.Position.Level)

	counts, err := c.NotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, NotificationCount{Count: 3, Revision: 1, Rejected: 2}, *counts)
	assert.Equal(t, "Bearer tok123", lastAuth.Load())

	require.NoError(t, c.Logout(ctx))
	_, err = c.NotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", lastAuth.Load())
}

func TestAPIError_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "이미 존재하는 사용자 ID입니다."})
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL})
	_, err := c.CreateUser(context.Background(), NewUser{UserID: "hong01"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "이미 존재하는 사용자 ID입니다.", apiErr.Message)
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.EqualValues(t, 1, calls.Load())
}

func TestCheckDuplicate_QueryParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/check-duplicate", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]bool{"exists": r.URL.Query().Get("user_id") == "taken1"})
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL})
	exists, err := c.CheckDuplicate(context.Background(), "taken1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.CheckDuplicate(context.Background(), "free01")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateDocument_SendsPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/documents/7", r.URL.Path)
		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "status": patch["status"]})
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL})
	doc, err := c.UpdateDocument(context.Background(), 7, map[string]any{"status": "submitted"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), doc.ID)
	assert.Equal(t, "submitted", doc.Status)
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "a.pdf", header.Filename)
		assert.Equal(t, "hello", string(content))
		writeJSON(w, http.StatusOK, map[string]string{"message": "파일 업로드 성공", "path": r.FormValue("filePath")})
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL})
	path, err := c.Upload(context.Background(), "kim01/a.pdf", "a.pdf", strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, "kim01/a.pdf", path)
}

func TestUpload_TooLarge(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Upload(context.Background(), "x/big.bin", "big.bin", bytes.NewReader(nil), MaxUploadBytes+1)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Zero(t, calls.Load())
}
