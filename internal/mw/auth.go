package mw

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RoleKey is the context key under which the caller's role is stored.
const RoleKey = "role"

// Caller roles understood by the API.
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
	RoleCSR        = "csr"
	RoleCustomer   = "customer"
	RoleContractor = "contractor"
)

// AuthRequired validates the bearer token and stores the caller's role
// in the request context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		role, _ := claims[RoleKey].(string)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no role"})
			return
		}

		c.Set(RoleKey, role)
		c.Next()
	}
}

// Role returns the caller's role from the request context, or the
// empty string when unauthenticated.
func Role(c *gin.Context) string {
	if v, ok := c.Get(RoleKey); ok {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// RequireRoles rejects callers whose role is not in the allow list.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	}
}
