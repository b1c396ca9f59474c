package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/rf320-bridge/internal/device"
	"github.com/taoyao-code/rf320-bridge/internal/protocol/rf320"
)

// Handler 桥接控制面处理器：查询连接状态与近期事件，下发按键/握手命令
type Handler struct {
	ctrl   *device.Controller
	logger *zap.Logger
}

// NewHandler 创建控制面处理器
func NewHandler(ctrl *device.Controller, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{ctrl: ctrl, logger: logger}
}

// StateResponse 连接状态响应
type StateResponse struct {
	State string `json:"state"`
	Ready bool   `json:"ready"`
}

// GetState GET /api/v1/state
func (h *Handler) GetState(c *gin.Context) {
	st := h.ctrl.State()
	c.JSON(http.StatusOK, StateResponse{State: st.String(), Ready: st == device.StateReady})
}

// GetRecentEvents GET /api/v1/events/recent
func (h *Handler) GetRecentEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": h.ctrl.RecentEvents()})
}

// ButtonRequest 按键命令请求。button（命令名）与 id 二选一，
// long_press 为真时换成对应的长按变体。
type ButtonRequest struct {
	Button    string `json:"button"`
	ID        *int   `json:"id"`
	LongPress bool   `json:"long_press"`
}

// PostButton POST /api/v1/command/button
func (h *Handler) PostButton(c *gin.Context) {
	var req ButtonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cmdID byte
	switch {
	case req.Button != "":
		id, ok := rf320.ButtonByName(req.Button)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown button: " + req.Button})
			return
		}
		cmdID = id
	case req.ID != nil:
		if *req.ID < 0 || *req.ID > 0xFF || !rf320.KnownButton(byte(*req.ID)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "command id outside known set"})
			return
		}
		cmdID = byte(*req.ID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "button or id required"})
		return
	}

	if req.LongPress {
		long, ok := rf320.LongPress(cmdID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "command has no long-press variant"})
			return
		}
		cmdID = long
	}

	res := h.ctrl.SendButton(c.Request.Context(), cmdID)
	h.respond(c, res)
}

// PostHandshake POST /api/v1/handshake
func (h *Handler) PostHandshake(c *gin.Context) {
	res := h.ctrl.SendHandshake(c.Request.Context())
	h.respond(c, res)
}

func (h *Handler) respond(c *gin.Context, res device.Result) {
	status := http.StatusOK
	if !res.Success {
		// 非 Ready / 写失败都是快速失败的结果对象，不是服务端异常
		status = http.StatusConflict
	}
	c.JSON(status, res)
}
