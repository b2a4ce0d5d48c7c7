package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"club-knowledge-api/internal/domain/repository"
	"club-knowledge-api/internal/interfaces/http/dto"
	apperrors "club-knowledge-api/pkg/errors"
	"club-knowledge-api/pkg/logger"
	"club-knowledge-api/pkg/utils"
)

// AuthHandler 管理员登录
type AuthHandler struct {
	jwtManager *utils.JWTManager
	users      repository.UserRepository
	ttl        time.Duration
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(jwtManager *utils.JWTManager, users repository.UserRepository, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthHandler{
		jwtManager: jwtManager,
		users:      users,
		ttl:        ttl,
	}
}

// Login 校验用户名密码并签发访问令牌
// @Summary 管理员登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.users.GetByUsername(ctx, req.Username)
	if err != nil {
		logger.Error(ctx, "failed to get user", err)
		dto.FromError(c, apperrors.ErrServiceUnavailable.WithError(err))
		return
	}
	if user == nil || !user.CheckPassword(req.Password) {
		dto.FromError(c, apperrors.ErrInvalidCredentials)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(strconv.FormatInt(user.ID, 10), user.Username, h.ttl)
	if err != nil {
		logger.Error(ctx, "failed to generate token", err)
		dto.InternalError(c, "failed to generate token")
		return
	}

	logger.Info(ctx, "admin logged in", "username", user.Username)
	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.ttl.Seconds()),
	})
}
