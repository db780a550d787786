package middleware

import (
	"net/http"
	"strings"

	"checksuite-service/pkg/jwtutil"
	"checksuite-service/pkg/logger"
	"checksuite-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token from the Authorization header
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user and active-workspace info for handlers
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("workspace_id", claims.WorkspaceID)
		c.Set("workspace_name", claims.WorkspaceName)
		c.Set("user_role", claims.Role)

		log.Debug("Request authenticated",
			zap.String("user_id", claims.UserID),
			zap.String("workspace_id", claims.WorkspaceID),
			zap.String("role", claims.Role))

		return next(c)
	}
}
