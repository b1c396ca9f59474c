package device

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/rf320-bridge/internal/metrics"
	"github.com/taoyao-code/rf320-bridge/internal/protocol/rf320"
	"github.com/taoyao-code/rf320-bridge/internal/transport"
)

// 命令串行器。设备没有内部队列，每条命令至多回一组连贯响应，
// 因此同一时刻最多一条在途命令。门禁获取可能挂起调用方，
// 门禁本身不设超时（卡住的命令是调用方要修的 bug）；
// 发送后等待回显的窗口是有界的（几十毫秒量级，对齐实测设备延迟），
// 超时降级为「已发送、无响应」而不是无限阻塞。

// DefaultResponseWait 等待命令回显的默认窗口
const DefaultResponseWait = 50 * time.Millisecond

// Result 一次命令发送的结果。传输失败不自动重试，重试策略归调用方。
type Result struct {
	RequestID string `json:"request_id"`
	Success   bool   `json:"success"`
	SentBytes []byte `json:"sent_bytes,omitempty"`
	Response  []byte `json:"response,omitempty"`
	Err       string `json:"error,omitempty"`
}

type pendingEcho struct {
	group byte
	cmdID byte
	ch    chan []byte
}

// Commander 单槽互斥的命令发送器
type Commander struct {
	tr           transport.Transport
	sm           *StateMachine
	logger       *zap.Logger
	metrics      *metrics.AppMetrics
	responseWait time.Duration

	gate    chan struct{}     // 容量1的信号量，持有即独占发送权
	pending chan *pendingEcho // 当前在途命令的回显等待槽
}

// NewCommander 创建命令串行器。responseWait<=0 时取默认窗口。
func NewCommander(tr transport.Transport, sm *StateMachine, logger *zap.Logger, m *metrics.AppMetrics, responseWait time.Duration) *Commander {
	if responseWait <= 0 {
		responseWait = DefaultResponseWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Commander{
		tr:           tr,
		sm:           sm,
		logger:       logger,
		metrics:      m,
		responseWait: responseWait,
		gate:         make(chan struct{}, 1),
		pending:      make(chan *pendingEcho, 1),
	}
	c.gate <- struct{}{}
	return c
}

// SendButton 发送按键命令帧
func (c *Commander) SendButton(ctx context.Context, cmdID byte) Result {
	return c.send(ctx, rf320.Frame{Group: rf320.GroupButton, CommandID: cmdID}.Encode(),
		byte(rf320.GroupButton), cmdID)
}

// SendAck 发送确认应答帧
func (c *Commander) SendAck(ctx context.Context, cmdID byte) Result {
	return c.send(ctx, rf320.Frame{Group: rf320.GroupAck, CommandID: cmdID}.Encode(),
		byte(rf320.GroupAck), cmdID)
}

// SendHandshake 发送4字节握手帧
func (c *Commander) SendHandshake(ctx context.Context) Result {
	return c.send(ctx, rf320.EncodeHandshake(), rf320.HandshakeLenCode, 0xFF)
}

func (c *Commander) send(ctx context.Context, frame []byte, group, cmdID byte) Result {
	res := Result{RequestID: uuid.NewString()}

	// 门禁获取：可能挂起，随 ctx 取消而放弃
	select {
	case <-c.gate:
	case <-ctx.Done():
		res.Err = ctx.Err().Error()
		return res
	}
	defer func() { c.gate <- struct{}{} }()

	if !c.sm.Ready() {
		// 快速失败：不排队、不写传输层
		res.Err = ErrNotReady.Error()
		c.count("not_ready")
		return res
	}

	echo := &pendingEcho{group: group, cmdID: cmdID, ch: make(chan []byte, 1)}
	c.armEcho(echo)

	if err := c.tr.Write(ctx, frame); err != nil {
		c.disarmEcho()
		res.Err = err.Error()
		c.count("write_failed")
		return res
	}
	res.Success = true
	res.SentBytes = frame
	c.count("sent")

	// 有界等待回显；超时即「已发送、无响应」
	timer := time.NewTimer(c.responseWait)
	defer timer.Stop()
	select {
	case resp := <-echo.ch:
		res.Response = resp
	case <-timer.C:
		c.disarmEcho()
	case <-ctx.Done():
		c.disarmEcho()
	}
	return res
}

func (c *Commander) armEcho(p *pendingEcho) {
	c.disarmEcho()
	c.pending <- p
}

func (c *Commander) disarmEcho() {
	select {
	case <-c.pending:
	default:
	}
}

// OnEcho 入站路径观察到命令回显时调用；与在途命令匹配则唤醒等待者
func (c *Commander) OnEcho(group, cmdID byte, raw []byte) {
	select {
	case p := <-c.pending:
		if p.group == group && p.cmdID == cmdID {
			select {
			case p.ch <- raw:
			default:
			}
			return
		}
		// 不匹配的回显放回等待槽
		select {
		case c.pending <- p:
		default:
		}
	default:
	}
}

func (c *Commander) count(outcome string) {
	if c.metrics != nil {
		c.metrics.CommandTotal.WithLabelValues(outcome).Inc()
	}
}
