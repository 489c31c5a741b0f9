package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// IdentityKey holds the verified email of the caller, if any.
const IdentityKey = "identity_email"

// SessionEmailKey is where the external login flow stores the email.
const SessionEmailKey = "email"

// LoadIdentity resolves the caller from a bearer JWT or the cookie session.
// It never rejects a request; routes that need an identity decide that.
func LoadIdentity(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if email := emailFromBearer(c.GetHeader("Authorization"), jwtSecret); email != "" {
			c.Set(IdentityKey, email)
		} else if email := emailFromSession(c); email != "" {
			c.Set(IdentityKey, email)
		}
		c.Next()
	}
}

// VerifiedEmail returns the email set by LoadIdentity.
func VerifiedEmail(c *gin.Context) (string, bool) {
	email := c.GetString(IdentityKey)
	return email, email != ""
}

func emailFromBearer(header, secret string) string {
	if secret == "" {
		return ""
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		zap.L().Debug("rejected bearer token", zap.Error(err))
		return ""
	}

	email, _ := claims["email"].(string)
	return email
}

func emailFromSession(c *gin.Context) string {
	// sessions.Default panics when the session middleware is not installed.
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	email, _ := sessions.Default(c).Get(SessionEmailKey).(string)
	return email
}
