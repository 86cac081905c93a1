package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/pkg/jwt"
)

// ContextKeyService is where the authenticated caller service name is stored
const ContextKeyService = "auth_service"

// ServiceAuth verifies the service-to-service bearer token on protected
// routes. The caller service name ends up in the echo context for logging.
func ServiceAuth(manager *jwt.Manager, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return respondUnauthenticated(c, errors.ErrUnauthenticated())
			}

			claims, err := manager.ValidateServiceToken(token)
			if err != nil {
				if logger != nil {
					logger.Warn("service token rejected",
						zap.String("path", c.Path()),
						zap.Error(err),
					)
				}
				return respondUnauthenticated(c, errors.ErrInvalidToken())
			}

			c.Set(ContextKeyService, claims.Service)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func respondUnauthenticated(c echo.Context, appErr errors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
