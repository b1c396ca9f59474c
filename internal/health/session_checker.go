package health

import (
	"context"
	"time"

	"github.com/taoyao-code/rf320-bridge/internal/device"
)

// SessionChecker 设备会话健康检查器。
// Ready 为健康；正在建链的中间态为降级；断开或错误为不健康。
// 附带最近一次解码事件的时间，用于判断通知链路是否还在活动。
type SessionChecker struct {
	ctrl *device.Controller
}

// NewSessionChecker 创建设备会话检查器
func NewSessionChecker(ctrl *device.Controller) *SessionChecker {
	return &SessionChecker{ctrl: ctrl}
}

// Name 检查器名称
func (c *SessionChecker) Name() string { return "device_session" }

// Check 执行检查
func (c *SessionChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	st := c.ctrl.State()

	details := map[string]any{"state": st.String()}
	if evs := c.ctrl.RecentEvents(); len(evs) > 0 {
		details["last_event_age"] = time.Since(evs[0].OccurredAt).String()
		details["recent_events"] = len(evs)
	}

	var status Status
	var msg string
	switch st {
	case device.StateReady:
		status = StatusHealthy
		msg = "session ready"
	case device.StateConnecting, device.StateConnected, device.StateDiscoveringCapabilities:
		status = StatusDegraded
		msg = "session establishing"
	default:
		status = StatusUnhealthy
		msg = "session down"
	}

	return CheckResult{
		Status:  status,
		Message: msg,
		Details: details,
		Latency: time.Since(start),
	}
}
