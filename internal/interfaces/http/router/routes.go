package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册业务路由
func RegisterRoutes(engine *gin.Engine, h *RouterHandlers, limit, requireAdmin gin.HandlerFunc) {
	api := engine.Group("/api", limit)
	{
		api.POST("/chat", h.Chat.Chat)
		api.POST("/add-event", requireAdmin, h.Event.AddEvent)
	}

	auth := engine.Group("/auth", limit)
	{
		auth.POST("/login", h.Auth.Login)
	}
}
