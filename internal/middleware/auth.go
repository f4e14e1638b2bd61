package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const UserIDKey = "user_id"

// RoleLookup resolves the role of an authenticated user.
type RoleLookup interface {
	Role(ctx context.Context, userID string) (string, error)
}

type Authenticator struct {
	secret []byte
	logger *logrus.Logger
}

func NewAuthenticator(secret string, logger *logrus.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), logger: logger}
}

// IssueToken signs an HS256 token whose subject is userID.
func (a *Authenticator) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken validates a token and returns its subject.
func (a *Authenticator) ParseToken(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token subject under UserIDKey.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "Authentication required", nil)
			return
		}

		userID, err := a.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			a.logger.WithError(err).WithField("request_id", c.GetString(RequestIDKey)).Debug("Rejected bearer token")
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// RequireTeacher admits only users whose stored role is teacher. It must run
// after RequireAuth.
func RequireTeacher(roles RoleLookup, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		role, err := roles.Role(c.Request.Context(), userID)
		if err != nil {
			logger.WithError(err).WithField("user_id", userID).Error("Failed to look up role")
			utils.AbortWithError(c, http.StatusInternalServerError, "Failed to check permissions", err)
			return
		}
		if role != models.RoleTeacher {
			utils.AbortWithError(c, http.StatusForbidden, "Teacher role required", fmt.Errorf("role %q", role))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
