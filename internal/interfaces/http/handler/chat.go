package handler

import (
	"github.com/gin-gonic/gin"

	"club-knowledge-api/internal/application/query"
	"club-knowledge-api/internal/interfaces/http/dto"
	"club-knowledge-api/pkg/logger"
)

// ChatHandler 问答处理器
type ChatHandler struct {
	answerer query.Answerer
}

// NewChatHandler 创建问答处理器
func NewChatHandler(answerer query.Answerer) *ChatHandler {
	return &ChatHandler{answerer: answerer}
}

// Chat 回答一个问题
// @Summary 问答
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "问题"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	logger.Info(ctx, "received query", "query", req.Query)
	answer, err := h.answerer.Answer(ctx, req.Query)
	if err != nil {
		logger.Error(ctx, "failed to answer query", err)
		dto.FromError(c, err)
		return
	}

	c.JSON(200, dto.ChatResponse{Answer: answer})
}
