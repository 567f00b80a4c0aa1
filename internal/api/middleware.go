package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/metrics"
	"cfq/wod-board/internal/ratelimit"
	"cfq/wod-board/internal/session"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AuthMiddleware verifies the bearer token with the session manager and puts the
// identity on the request context.
func AuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		identity, err := sessions.Verify(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, session.ErrTokenExpired):
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			case errors.Is(err, session.ErrTokenRevoked):
				abortWithError(c, http.StatusUnauthorized, "Token has been revoked")
			case errors.Is(err, session.ErrInvalidToken):
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
			default:
				log.Errorf("verify session: %s", err)
				abortWithError(c, http.StatusInternalServerError, "Could not verify session")
			}
			return
		}

		c.Request = c.Request.WithContext(session.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := getIdentity(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "User identity not found in context")
			return
		}

		for _, allowedRole := range allowedRoles {
			if identity.Role == allowedRole {
				c.Next()
				return
			}
		}

		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", identity.Role))
	}
}

func getIdentity(c *gin.Context) (*session.Identity, error) {
	identity := session.FromContext(c.Request.Context())
	if identity == nil {
		return nil, errors.New("identity not found in context")
	}
	return identity, nil
}

// RequestLogger logs every request once it is served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}
		if identity, err := getIdentity(c); err == nil {
			fields["user_id"] = identity.UserID
		}

		entry := log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request served")
		case status >= http.StatusBadRequest:
			entry.Warn("request served")
		default:
			entry.Debug("request served")
		}
	}
}

func RequestMetrics(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.GaugeRequests.Inc()
		defer m.GaugeRequests.Dec()

		begin := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HistogramRequestDuration.WithLabelValues(route, c.Request.Method, status).Observe(time.Since(begin).Seconds())
		m.CounterRequests.WithLabelValues(c.Request.Method, status).Inc()
	}
}

// RateLimit rejects requests over the per client IP budget with 429.
func RateLimit(limiter *ratelimit.KeyedRateLimiter, m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		if m != nil {
			m.CounterRateLimitedRequests.Inc()
		}
		abortWithError(c, http.StatusTooManyRequests, "Too many requests, retry later")
	}
}

func PanicRecovery(m *metrics.Manager) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Errorf("http: panic serving %s: %v\n%s", c.Request.URL.Path, recovered, debug.Stack())
		if m != nil {
			m.CounterHandleRequestPanic.Inc()
		}
		abortWithError(c, http.StatusInternalServerError, "Internal Server Error")
	})
}
