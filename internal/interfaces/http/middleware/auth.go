package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"club-knowledge-api/internal/interfaces/http/dto"
	apperrors "club-knowledge-api/pkg/errors"
	"club-knowledge-api/pkg/logger"
	"club-knowledge-api/pkg/utils"
)

// Auth 校验管理员 Bearer 令牌，enabled 为 false 时直接放行
func Auth(jwtManager *utils.JWTManager, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			dto.Abort(c, http.StatusUnauthorized, apperrors.CodeTokenMissing, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			dto.Abort(c, http.StatusUnauthorized, apperrors.CodeTokenInvalid, "invalid authorization format")
			return
		}

		claims, err := jwtManager.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				dto.Abort(c, http.StatusUnauthorized, apperrors.CodeTokenExpired, "token expired")
				return
			}
			dto.Abort(c, http.StatusUnauthorized, apperrors.CodeTokenInvalid, "invalid token")
			return
		}
		if claims.Type != utils.TokenTypeAccess {
			dto.Abort(c, http.StatusUnauthorized, apperrors.CodeTokenInvalid, "invalid token type")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
