package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthCookie is the cookie checked when no Authorization header is sent
const AuthCookie = "auth_token"

// RoleLister loads the roles granted to a user
type RoleLister interface {
	ListRoles(ctx context.Context, userID string) ([]string, error)
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the HS256 bearer token and stores the caller's
// Principal, with roles read from the database
func AuthMiddleware(secret string, roles RoleLister, logger *slog.Logger) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication token"})
			return
		}

		userID, email, err := parseToken(raw, key)
		if err != nil {
			logger.Debug("Rejected token", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
			return
		}

		granted, err := roles.ListRoles(c.Request.Context(), userID)
		if err != nil {
			logger.Error("Failed to load roles",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		c.Set(domain.PrincipalKey, &domain.Principal{
			UserID: userID,
			Email:  email,
			Roles:  granted,
		})
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}

	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	return ""
}

func parseToken(raw string, key []byte) (string, string, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", err
	}

	if cl.Subject == "" {
		return "", "", errors.New("token has no subject")
	}
	if _, err := uuid.Parse(cl.Subject); err != nil {
		return "", "", fmt.Errorf("subject is not a user id: %w", err)
	}

	return cl.Subject, cl.Email, nil
}

// RequireRole rejects callers holding none of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(domain.PrincipalKey)
		p, ok := v.(*domain.Principal)
		if !ok || !p.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Requires role: " + strings.Join(roles, " or "),
			})
			return
		}
		c.Next()
	}
}
