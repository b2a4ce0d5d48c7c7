package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"club-knowledge-api/internal/application/ingestion"
	"club-knowledge-api/internal/interfaces/http/dto"
)

// EventIngestor 新活动入库
type EventIngestor interface {
	Add(ctx context.Context, in ingestion.Input) ingestion.Result
}

// EventHandler 活动处理器
type EventHandler struct {
	ingestor EventIngestor
}

// NewEventHandler 创建活动处理器
func NewEventHandler(ingestor EventIngestor) *EventHandler {
	return &EventHandler{ingestor: ingestor}
}

// AddEvent 新增活动并计算嵌入
// @Summary 新增活动
// @Tags Events
// @Accept json
// @Produce json
// @Param body body dto.AddEventRequest true "活动"
// @Success 200 {object} dto.AddEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/add-event [post]
func (h *EventHandler) AddEvent(c *gin.Context) {
	var req dto.AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	res := h.ingestor.Add(c.Request.Context(), req.ToInput())
	if !res.OK {
		status, code := ingestionStatus(res.Reason)
		dto.Error(c, status, code, res.Message)
		return
	}

	c.JSON(http.StatusOK, dto.AddEventResponse{
		Status:  "success",
		Message: res.Message,
	})
}
