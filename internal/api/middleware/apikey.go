package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the anonymous or service-role key.
const APIKeyHeader = "apikey"

const apiRoleKey = "apiRole"

// APIRole is the privilege granted by the presented key.
type APIRole int

const (
	RoleNone APIRole = iota
	RoleAnon
	RoleServiceRole
)

// APIKeys holds the two configured keys. Empty keys disable the corresponding check.
type APIKeys struct {
	Anon        string
	ServiceRole string
}

func (k APIKeys) enabled() bool {
	return k.Anon != "" || k.ServiceRole != ""
}

func (k APIKeys) roleOf(presented string) APIRole {
	switch {
	case presented == "":
		return RoleNone
	case k.ServiceRole != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(k.ServiceRole)) == 1:
		return RoleServiceRole
	case k.Anon != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(k.Anon)) == 1:
		return RoleAnon
	}
	return RoleNone
}

// APIKeyMiddleware checks the apikey header against the configured keys.
// With no keys configured every request passes.
func APIKeyMiddleware(keys APIKeys) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !keys.enabled() {
			c.Set(apiRoleKey, RoleServiceRole)
			c.Next()
			return
		}
		// 키는 헤더로만 받는다. query 로 받으면 로그에 남는다.
		role := keys.roleOf(strings.TrimSpace(c.GetHeader(APIKeyHeader)))
		if role == RoleNone {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "유효하지 않은 API 키입니다."})
			return
		}
		c.Set(apiRoleKey, role)
		c.Next()
	}
}

// RequireServiceRole rejects requests authenticated with the anonymous key when a
// service-role key is configured.
func RequireServiceRole(keys APIKeys) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keys.ServiceRole == "" {
			c.Next()
			return
		}
		if RoleFromContext(c) != RoleServiceRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "권한이 없습니다."})
			return
		}
		c.Next()
	}
}

// RoleFromContext returns the role set by APIKeyMiddleware.
func RoleFromContext(c *gin.Context) APIRole {
	if value, ok := c.Get(apiRoleKey); ok {
		if role, ok := value.(APIRole); ok {
			return role
		}
	}
	return RoleNone
}
