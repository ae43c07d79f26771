// File: internal/middleware/identity.go
package middleware

import (
	"strings"

	"carmatch_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// The upstream gateway authenticates callers and forwards their id in
// common.UserIDHeader. These middlewares only read it.

func parseUserID(c *gin.Context) (uuid.UUID, bool, error) {
	raw := strings.TrimSpace(c.GetHeader(common.UserIDHeader))
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, true, common.ErrUnauthorized.WithDetails("Invalid " + common.UserIDHeader + " header.")
	}
	return id, true, nil
}

// RequireUser rejects requests without a caller identity.
func RequireUser(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, present, err := parseUserID(c)
		if err != nil {
			logger.Debug("Caller identity malformed", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, err)
			return
		}
		if !present {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails(common.UserIDHeader+" header is required."))
			return
		}
		c.Set(common.UserIDKey, id)
		c.Next()
	}
}

// OptionalUser attaches the caller identity when one is supplied.
func OptionalUser(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, present, err := parseUserID(c)
		if err != nil {
			logger.Debug("Caller identity malformed", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, err)
			return
		}
		if present {
			c.Set(common.UserIDKey, id)
		}
		c.Next()
	}
}
