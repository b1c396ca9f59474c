package api

import "github.com/gin-gonic/gin"

// RegisterRoutes 挂载控制面路由
func RegisterRoutes(r *gin.Engine, h *Handler) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/state", h.GetState)
		v1.GET("/events/recent", h.GetRecentEvents)
		v1.POST("/command/button", h.PostButton)
		v1.POST("/handshake", h.PostHandshake)
	}
}
