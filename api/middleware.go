package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ctxRequestIDKey = "request_id"
	ctxStaffRoleKey = "staff_role"

	headerRequestID = "X-Request-ID"
)

var staffRoles = map[string]bool{
	"admin": true,
	"staff": true,
}

// RequestLogger logs one line per request; 5xx at error and 4xx at warn.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestIDKey, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func NewCORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

type staffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// StaffAuth requires an HS256 bearer token whose role claim is admin or staff.
// issuer is checked only when non-empty.
func StaffAuth(secret, issuer string, logger *zap.Logger) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(secret)

	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Token de acceso requerido"})
			c.Abort()
			return
		}

		var claims staffClaims
		if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
			return key, nil
		}); err != nil {
			logger.Warn("staff token rejected", zap.Error(errors.UnwrapAll(err)))
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Token inválido o expirado"})
			c.Abort()
			return
		}

		if !staffRoles[claims.Role] {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Permisos insuficientes"})
			c.Abort()
			return
		}

		c.Set(ctxStaffRoleKey, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
