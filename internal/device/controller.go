package device

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/rf320-bridge/internal/coremodel"
	"github.com/taoyao-code/rf320-bridge/internal/driverapi"
	"github.com/taoyao-code/rf320-bridge/internal/metrics"
	"github.com/taoyao-code/rf320-bridge/internal/protocol/rf320"
	"github.com/taoyao-code/rf320-bridge/internal/transport"
)

// Controller 把一条传输链路、连接状态机、协议引擎与命令串行器
// 组装成一个设备会话：
//   - 生命周期信号驱动状态机
//   - 通知字节喂给引擎，命令回显事件旁路给串行器做响应关联
//   - 解码事件转发给调用方 sink，并保留一段近期事件环形缓冲
type Controller struct {
	tr        transport.Transport
	sm        *StateMachine
	engine    *rf320.Engine
	commander *Commander
	logger    *zap.Logger
	metrics   *metrics.AppMetrics
	log       *EventLog

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Options 控制器可选参数
type Options struct {
	DeviceID     coremodel.DeviceID
	Sink         driverapi.EventSink // 可为 nil，仅保留环形缓冲
	ResponseWait time.Duration
	EventLogSize int
	Metrics      *metrics.AppMetrics
}

// NewController 组装设备会话。此时尚未连接。
func NewController(tr transport.Transport, logger *zap.Logger, opts Options) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.EventLogSize <= 0 {
		opts.EventLogSize = 128
	}
	c := &Controller{
		tr:      tr,
		sm:      NewStateMachine(),
		logger:  logger,
		metrics: opts.Metrics,
		log:     NewEventLog(opts.EventLogSize),
	}
	c.commander = NewCommander(tr, c.sm, logger, opts.Metrics, opts.ResponseWait)

	// 引擎 sink：先旁路回显给串行器，再记录、再转发
	tee := driverapi.EventSinkFunc(func(ctx context.Context, ev *coremodel.Event) error {
		if ev.Type == coremodel.EventCommandEcho && ev.CommandEcho != nil {
			c.commander.OnEcho(ev.CommandEcho.Group, ev.CommandEcho.CommandID, ev.CommandEcho.Raw)
		}
		c.log.Append(ev)
		if opts.Sink != nil {
			return opts.Sink.HandleEvent(ctx, ev)
		}
		return nil
	})
	c.engine = rf320.NewEngine(opts.DeviceID, tee, logger, opts.Metrics)

	if opts.Metrics != nil {
		c.sm.Observe(func(old, new State) {
			opts.Metrics.StateGauge.Set(float64(new))
			logger.Info("connection state changed",
				zap.String("from", old.String()),
				zap.String("to", new.String()))
		})
	} else {
		c.sm.Observe(func(old, new State) {
			logger.Info("connection state changed",
				zap.String("from", old.String()),
				zap.String("to", new.String()))
		})
	}
	return c
}

// Start 发起连接并开始消费生命周期信号。非阻塞。
func (c *Controller) Start(ctx context.Context) error {
	if err := c.sm.Connect(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.tr.SetNotifyHandler(func(data []byte) {
		c.engine.HandleNotification(runCtx, data)
	})

	if err := c.tr.Connect(ctx); err != nil {
		// 连接请求被拒：进入 Error
		c.sm.Fail()
		cancel()
		return err
	}

	c.wg.Add(1)
	go c.consumeSignals(runCtx)
	return nil
}

func (c *Controller) consumeSignals(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-c.tr.Signals():
			if !ok {
				return
			}
			switch sig.Kind {
			case transport.SignalConnected:
				if err := c.sm.LinkEstablished(); err == nil {
					_ = c.sm.CapabilitiesFound()
				}
			case transport.SignalCapabilitiesResolved:
				_ = c.sm.CapabilitiesResolved()
			case transport.SignalCapabilityFailure:
				c.logger.Error("required capabilities not found", zap.Error(sig.Err))
				c.sm.Fail()
			case transport.SignalDisconnected:
				// 意外断链回 Disconnected，重组/配对半成品直接放弃
				c.engine.Reset()
				c.sm.LinkLost()
			}
		}
	}
}

// SendButton 发送按键命令；非 Ready 状态快速失败
func (c *Controller) SendButton(ctx context.Context, cmdID byte) Result {
	return c.commander.SendButton(ctx, cmdID)
}

// SendHandshake 发送握手帧
func (c *Controller) SendHandshake(ctx context.Context) Result {
	return c.commander.SendHandshake(ctx)
}

// State 当前连接状态
func (c *Controller) State() State {
	return c.sm.State()
}

// RecentEvents 近期解码事件快照（新在前）
func (c *Controller) RecentEvents() []*coremodel.Event {
	return c.log.Snapshot()
}

// Close 关闭会话。在途命令与未完成的重组一并放弃，安全可重入。
func (c *Controller) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.tr.Close()
	c.engine.Reset()
	c.wg.Wait()
	return err
}
