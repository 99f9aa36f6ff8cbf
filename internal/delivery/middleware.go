package delivery

import (
	"net/http"
	"strings"
	"time"

	"order_service/internal/auth"
	"order_service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	contextUsernameKey = "username"
	contextRoleKey     = "role"
)

// TokenParser verifies an access token and returns its claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

func AuthMiddleware(tokens TokenParser, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warnf("Middleware: Invalid Authorization header format: %s", authHeader)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			log.Warnf("Middleware: token verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(contextUsernameKey, claims.Subject)
		c.Set(contextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRoles aborts with 403 unless the authenticated caller holds one of
// the listed roles. Must run after AuthMiddleware.
func RequireRoles(log *logrus.Logger, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole, ok := c.Get(contextRoleKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		for _, role := range roles {
			if callerRole == role {
				c.Next()
				return
			}
		}
		log.Warnf("Middleware: role %v denied for %s %s", callerRole, c.Request.Method, c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"remote_ip":  c.ClientIP(),
			"request_id": requestID,
		})
		entry.Info("Incoming request")

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		completedEntry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
			"request_id":  requestID,
		})

		if len(c.Errors) > 0 {
			completedEntry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		} else if statusCode >= 500 {
			completedEntry.Error("Request completed with server error")
		} else if statusCode >= 400 {
			completedEntry.Warn("Request completed with client error")
		} else {
			completedEntry.Info("Request completed successfully")
		}
	}
}

func callerUsername(c *gin.Context) string {
	return c.GetString(contextUsernameKey)
}
