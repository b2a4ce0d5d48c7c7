package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"club-knowledge-api/internal/interfaces/http/dto"
	apperrors "club-knowledge-api/pkg/errors"
	"club-knowledge-api/pkg/logger"
)

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", err),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				dto.Abort(c, http.StatusInternalServerError, apperrors.CodeInternalError, "internal server error")
			}
		}()

		c.Next()
	}
}
