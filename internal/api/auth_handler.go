package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fitreport/internal/api/middleware"
	"fitreport/internal/auth"
	"fitreport/internal/database"
)

// authCookieMaxAge keeps the login cookie for one year, in seconds.
const authCookieMaxAge = 365 * 24 * 60 * 60

// ClearAuthHeader tells the caller to drop any stored token.
const ClearAuthHeader = "X-Clear-Auth"

type loginService interface {
	Login(ctx context.Context, userID, password string) (*auth.LoginResult, error)
}

// AuthHandler serves login and logout.
type AuthHandler struct {
	authService           loginService
	redis                 redisRateCounter
	loginRateLimitPerHour int
	secureCookie          bool
}

// NewAuthHandler builds an AuthHandler. redisClient may be nil, which disables the
// login rate limit.
func NewAuthHandler(authService loginService, redisClient redisRateCounter, loginRateLimitPerHour int, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:           authService,
		redis:                 redisClient,
		loginRateLimitPerHour: loginRateLimitPerHour,
		secureCookie:          secureCookie,
	}
}

type loginRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type positionView struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type adminView struct {
	ID          uint          `json:"id"`
	UserID      string        `json:"user_id"`
	Name        string        `json:"name"`
	Position    *positionView `json:"position"`
	Phone       string        `json:"phone"`
	Address     string        `json:"address"`
	Status      string        `json:"status"`
	CompanyName string        `json:"company_name"`
}

func newAdminView(u database.User) adminView {
	view := adminView{
		ID:          u.ID,
		UserID:      u.UserID,
		Name:        u.Name,
		Phone:       u.Phone,
		Address:     u.Address,
		Status:      u.Status,
		CompanyName: u.CompanyName,
	}
	if u.Position != nil {
		view.Position = &positionView{Name: u.Position.Name, Level: u.Position.Level}
	}
	return view
}

// Login checks the credentials and issues a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, msgLoginMissingFields)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.String("user_id", req.UserID))

	if h.rateLimited(ctx, c.ClientIP(), req.UserID, logger) {
		TooManyRequests(c, msgLoginRateLimited)
		return
	}

	result, err := h.authService.Login(ctx, req.UserID, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		BadRequest(c, msgLoginMissingFields)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		logger.Info("login failed: invalid credentials")
		Unauthorized(c, msgLoginInvalid)
		return
	case errors.Is(err, auth.ErrInactiveAccount):
		logger.Info("login failed: inactive account")
		Forbidden(c, msgLoginInactive)
		return
	case err != nil:
		logger.Error("login failed", slog.Any("error", err))
		Internal(c, msgServerError)
		return
	}

	h.setAuthCookie(c, result.Token, authCookieMaxAge)

	logger.Info("login succeeded")
	c.JSON(http.StatusOK, gin.H{
		"message": msgLoginSuccess,
		"token":   result.Token,
		"admin":   newAdminView(result.User),
	})
}

// rateLimited counts the attempt per client IP and account per hour.
// Redis failures never block a login.
func (h *AuthHandler) rateLimited(ctx context.Context, ip, userID string, logger *slog.Logger) bool {
	if h.redis == nil || h.loginRateLimitPerHour <= 0 {
		return false
	}
	key := "rate:login:" + ip + ":" + strings.ToLower(strings.TrimSpace(userID)) + ":" + time.Now().UTC().Format("2006010215")
	count, err := incrWithTTL(ctx, h.redis, key, time.Hour)
	if err != nil {
		logger.Warn("login rate counter unavailable", slog.Any("error", err))
		return false
	}
	if count > int64(h.loginRateLimitPerHour) {
		logger.Info("login rate limited", slog.Int64("attempts", count))
		return true
	}
	return false
}

// Logout clears the auth cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setAuthCookie(c, "", -1)
	c.Header(ClearAuthHeader, "true")
	c.JSON(http.StatusOK, gin.H{"message": msgLogoutSuccess})
}

// setAuthCookie writes the token as-is. gin's SetCookie would query-escape the
// base64 padding.
func (h *AuthHandler) setAuthCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
