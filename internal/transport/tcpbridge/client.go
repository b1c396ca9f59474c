package tcpbridge

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/rf320-bridge/internal/transport"
)

// TCP 桥接传输：连到设备模拟器的流式链路。
// 流上的通道角色是固定的，拨号成功后能力即视为就绪。

// ErrClosed 传输已关闭
var ErrClosed = errors.New("transport closed")

// Client 实现 transport.Transport
type Client struct {
	addr         string
	dialTimeout  time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger

	conn   net.Conn
	notify func([]byte)
	sigC   chan transport.Signal
	closed int32
	wg     sync.WaitGroup
}

// New 创建 TCP 桥接传输
func New(addr string, dialTimeout, writeTimeout time.Duration, logger *zap.Logger) *Client {
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		addr:         addr,
		dialTimeout:  dialTimeout,
		writeTimeout: writeTimeout,
		logger:       logger,
		sigC:         make(chan transport.Signal, 8),
	}
}

// SetNotifyHandler 安装通知回调，必须在 Connect 前调用
func (c *Client) SetNotifyHandler(fn func(data []byte)) { c.notify = fn }

// Signals 生命周期信号流
func (c *Client) Signals() <-chan transport.Signal { return c.sigC }

// Connect 拨号并启动读循环
func (c *Client) Connect(ctx context.Context) error {
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return err
	}
	c.conn = conn
	c.emit(transport.Signal{Kind: transport.SignalConnected})
	c.emit(transport.Signal{Kind: transport.SignalCapabilitiesResolved})

	c.wg.Add(1)
	go c.readLoop()
	return nil
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	dec := NewStreamDecoder()
	buf := make([]byte, 512)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			for _, frame := range dec.Feed(buf[:n]) {
				if c.notify != nil {
					c.notify(frame)
				}
			}
		}
		if err != nil {
			if atomic.LoadInt32(&c.closed) == 0 {
				c.logger.Warn("tcp link lost", zap.Error(err))
			}
			c.emit(transport.Signal{Kind: transport.SignalDisconnected, Err: err})
			return
		}
	}
}

// Write 下行一帧（加长度前缀）。失败直接上报，不重试。
func (c *Client) Write(ctx context.Context, p []byte) error {
	if atomic.LoadInt32(&c.closed) == 1 || c.conn == nil {
		return ErrClosed
	}
	if len(p) == 0 || len(p) > maxFrameLen {
		return errors.New("frame length out of range")
	}
	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	out := make([]byte, 0, len(p)+1)
	out = append(out, byte(len(p)))
	out = append(out, p...)
	_, err := c.conn.Write(out)
	return err
}

// Close 关闭链路；在途读写随连接关闭而结束
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	var err error
	if c.conn != nil {
		err = c.conn.Close()
	}
	c.wg.Wait()
	return err
}

func (c *Client) emit(sig transport.Signal) {
	select {
	case c.sigC <- sig:
	default:
		// 消费方滞后导致缓冲满：丢弃并记日志
		c.logger.Warn("lifecycle signal dropped", zap.Int("kind", int(sig.Kind)))
	}
}
