package simulator

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/taoyao-code/rf320-bridge/internal/protocol/rf320"
	"github.com/taoyao-code/rf320-bridge/internal/transport/tcpbridge"
)

// 设备模拟器：在 TCP 上扮演 RF320 接收机。
// 行为模型：握手/命令帧回显（校验和合法），收到握手后按脚本
// 回放一段通知时间线。回放用令牌桶限速，逼近实测设备的报文节奏。
// 不做真实物理仿真。

// Config 模拟器参数
type Config struct {
	Addr string
	// NotifyPerSec 回放通知的稳定速率（每秒条数）
	NotifyPerSec int
	// Script 回放脚本；为空时使用内置默认脚本
	Script []Frame
}

// Frame 脚本中的一条通知帧
type Frame []byte

// Simulator TCP 设备模拟器
type Simulator struct {
	cfg    Config
	logger *zap.Logger
	ln     net.Listener
	wg     sync.WaitGroup
	stopC  chan struct{}
}

// New 创建模拟器
func New(cfg Config, logger *zap.Logger) *Simulator {
	if cfg.NotifyPerSec <= 0 {
		cfg.NotifyPerSec = 20
	}
	if len(cfg.Script) == 0 {
		cfg.Script = DefaultScript()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{cfg: cfg, logger: logger, stopC: make(chan struct{})}
}

// Start 监听并接受连接（非阻塞）
func (s *Simulator) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.logger.Info("simulator listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.stopC:
					return
				default:
				}
				time.Sleep(50 * time.Millisecond)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.serve(c)
			}(conn)
		}
	}()
	return nil
}

// Addr 实际监听地址（测试用 :0 端口时读取）
func (s *Simulator) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Shutdown 停止监听并等待连接退出
func (s *Simulator) Shutdown() error {
	close(s.stopC)
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Simulator) serve(c net.Conn) {
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopC
		cancel()
		_ = c.Close()
	}()

	var writeMu sync.Mutex
	send := func(frame []byte) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = c.SetWriteDeadline(time.Now().Add(3 * time.Second))
		out := make([]byte, 0, len(frame)+1)
		out = append(out, byte(len(frame)))
		out = append(out, frame...)
		_, _ = c.Write(out)
	}

	var replayOnce sync.Once
	dec := tcpbridge.NewStreamDecoder()
	buf := make([]byte, 512)
	for {
		n, err := c.Read(buf)
		if n > 0 {
			for _, frame := range dec.Feed(buf[:n]) {
				s.handleFrame(ctx, frame, send, &replayOnce)
			}
		}
		if err != nil {
			return
		}
	}
}

// handleFrame 命令帧回显；首个握手触发脚本回放
func (s *Simulator) handleFrame(ctx context.Context, frame []byte, send func([]byte), replayOnce *sync.Once) {
	if len(frame) < 2 || frame[0] != rf320.Marker {
		return
	}
	switch frame[1] {
	case rf320.HandshakeLenCode:
		send(rf320.EncodeHandshake())
		replayOnce.Do(func() {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.replay(ctx, send)
			}()
		})
	case rf320.FrameLenCode:
		if len(frame) == 5 {
			// 回显同一帧（校验和原样成立）
			dup := make([]byte, len(frame))
			copy(dup, frame)
			send(dup)
		}
	}
}

// replay 按令牌桶节奏回放脚本
func (s *Simulator) replay(ctx context.Context, send func([]byte)) {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.NotifyPerSec), 1)
	for _, frame := range s.cfg.Script {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		send(frame)
	}
	s.logger.Debug("script replay finished", zap.Int("frames", len(s.cfg.Script)))
}
