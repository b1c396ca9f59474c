package transport

import "context"

// 传输层边界。引擎不做设备扫描、配对或 GATT 特征解析，
// 只依赖建立好的写/通知两条逻辑通道与生命周期信号。

// SignalKind 连接生命周期信号类型
type SignalKind int

const (
	// SignalConnected 链路已建立
	SignalConnected SignalKind = iota
	// SignalCapabilitiesResolved 写/通知能力均已就绪
	SignalCapabilitiesResolved
	// SignalCapabilityFailure 必需能力缺失（写或通知特征未找到）
	SignalCapabilityFailure
	// SignalDisconnected 链路断开（任何原因）
	SignalDisconnected
)

// Signal 生命周期信号
type Signal struct {
	Kind SignalKind
	Err  error
}

// Transport 与设备的双通道抽象：
//   - Write 下行原始帧，失败即返回错误，传输层不做重试
//   - SetNotifyHandler 安装上行通知回调（必须在 Connect 前安装）；
//     回调运行在传输层的派发上下文，不得阻塞
//   - Signals 生命周期信号流
type Transport interface {
	Connect(ctx context.Context) error
	Write(ctx context.Context, p []byte) error
	SetNotifyHandler(fn func(data []byte))
	Signals() <-chan Signal
	Close() error
}
