package rf320

import (
	"context"
	"encoding/hex"
	"sync"

	"go.uber.org/zap"

	"github.com/taoyao-code/rf320-bridge/internal/coremodel"
	"github.com/taoyao-code/rf320-bridge/internal/driverapi"
	"github.com/taoyao-code/rf320-bridge/internal/metrics"
)

// Engine 单连接协议引擎：结构化校验 -> 分发 -> 字段解码 ->
// （重组 | 配对 | 直接发射）-> 类型化事件。
// 重组缓冲与配对器是连接作用域的显式字段，不做任何进程级全局状态，
// 多个引擎实例（多连接/测试并行）互不干扰。
type Engine struct {
	deviceID coremodel.DeviceID
	emitter  *EventEmitter
	logger   *zap.Logger
	metrics  *metrics.AppMetrics

	// 入站路径可能被传输层并发派发，重组与配对状态统一加锁；
	// 报文速率每秒个位数，争用可忽略。
	mu   sync.Mutex
	asm  *Assembler
	corr *Correlator
}

// NewEngine 创建连接作用域引擎。metrics 可为 nil。
func NewEngine(deviceID coremodel.DeviceID, sink driverapi.EventSink, logger *zap.Logger, m *metrics.AppMetrics) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		deviceID: deviceID,
		emitter:  NewEventEmitter(sink, logger),
		logger:   logger,
		metrics:  m,
		asm:      NewAssembler(),
		corr:     NewCorrelator(),
	}
}

// HandleNotification 处理一条入站通知。整条流水线同步完成、无阻塞点，
// 可直接跑在传输层的通知派发线程上。任何畸形输入最坏结果是
// 「这一条报文不产生事件」，绝不中断后续报文。
func (e *Engine) HandleNotification(ctx context.Context, raw []byte) {
	kind, ok := TryDecodeHeader(raw)
	if e.metrics != nil {
		e.metrics.NotifyBytes.Add(float64(len(raw)))
	}
	if !ok {
		// 结构化拒绝：太短/标记错/回显校验和失配，静默丢弃
		if e.metrics != nil {
			e.metrics.ParseTotal.WithLabelValues("rejected").Inc()
		}
		e.logger.Debug("packet rejected",
			zap.String("kind", kind.String()),
			zap.String("raw", hex.EncodeToString(raw)))
		return
	}
	if e.metrics != nil {
		e.metrics.ParseTotal.WithLabelValues("ok").Inc()
		e.metrics.RouteTotal.WithLabelValues(kind.String()).Inc()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.route(ctx, kind, raw)
}

// route 穷尽匹配封闭类型集合选择解码器。
// 解码器内部失败在此边界降级为 Unknown 事件，不向外传播。
func (e *Engine) route(ctx context.Context, kind MessageKind, pkt []byte) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("decoder panic downgraded",
				zap.String("kind", kind.String()),
				zap.Any("panic", r))
			e.emitUnknown(ctx, pkt)
		}
	}()

	switch kind {
	case KindStatusShort:
		e.emitOrUnknown(ctx, pkt, decodeCommandEcho)
	case KindFrequencyStatus:
		e.emitOrUnknown(ctx, pkt, decodeFrequencyStatus)
	case KindBandInfo:
		e.emitOrUnknown(ctx, pkt, decodeBandInfo)
	case KindVolume:
		e.emitOrUnknown(ctx, pkt, decodeVolume)
	case KindSignal:
		e.emitOrUnknown(ctx, pkt, decodeSignal)
	case KindTimeOfDay:
		e.emitOrUnknown(ctx, pkt, decodeTimeOfDay)
	case KindFrequencyInput:
		e.emitOrUnknown(ctx, pkt, decodeFrequencyInput)
	case KindSubBandInfo:
		e.emitOrUnknown(ctx, pkt, decodeSubBandInfo)
	case KindLockStatus:
		e.emitOrUnknown(ctx, pkt, decodeLockStatus)
	case KindRecordingStatus:
		e.emitOrUnknown(ctx, pkt, decodeRecordingStatus)
	case KindBattery:
		e.emitOrUnknown(ctx, pkt, decodeBattery)
	case KindDetailedFrequency:
		e.emitOrUnknown(ctx, pkt, decodeDetailedFrequency)
	case KindBandwidth:
		e.emitOrUnknown(ctx, pkt, decodeBandwidth)
	case KindDeviceInfo:
		e.handleInfoFragment(ctx, pkt, true)
	case KindDeviceInfoCont:
		e.handleInfoFragment(ctx, pkt, false)
	case KindFreqDataPart1:
		e.corr.PutIndex(decodeIndexHalf(pkt))
	case KindFreqDataPart2:
		e.handleDisplayHalf(ctx, pkt)
	default:
		e.emitUnknown(ctx, pkt)
	}
}

type decoderFunc func(coremodel.DeviceID, []byte) (*coremodel.Event, error)

func (e *Engine) emitOrUnknown(ctx context.Context, pkt []byte, dec decoderFunc) {
	ev, err := dec(e.deviceID, pkt)
	if err != nil {
		// 解码器内部失败：降级为 Unknown，保留原始字节供诊断
		e.logger.Debug("decode failed, downgraded to unknown",
			zap.String("raw", hex.EncodeToString(pkt)),
			zap.Error(err))
		e.emitUnknown(ctx, pkt)
		return
	}
	e.emitter.Emit(ctx, ev)
}

func (e *Engine) emitUnknown(ctx context.Context, pkt []byte) {
	if e.metrics != nil {
		e.metrics.UnknownTotal.Inc()
	}
	raw := make([]byte, len(pkt))
	copy(raw, pkt)
	ev := newEvent(e.deviceID, coremodel.EventUnknown)
	ev.Unknown = &coremodel.UnknownPayload{Raw: raw}
	e.emitter.Emit(ctx, ev)
}

// handleInfoFragment 设备信息片段进重组缓冲，末片触发一次 DeviceInfo 事件
func (e *Engine) handleInfoFragment(ctx context.Context, pkt []byte, first bool) {
	if first && e.asm.Pending(streamKeyDeviceInfo) {
		if e.metrics != nil {
			e.metrics.ReassemblyReset.Inc()
		}
		e.logger.Debug("reassembly restarted, partial data discarded",
			zap.String("key", streamKeyDeviceInfo))
	}
	frag := decodeInfoFragment(pkt)
	text, done := e.asm.Push(streamKeyDeviceInfo, frag.Text, first, frag.Terminal)
	if !done {
		return
	}
	if e.metrics != nil {
		e.metrics.ReassemblyCompleted.Inc()
	}
	ev := newEvent(e.deviceID, coremodel.EventDeviceInfo)
	ev.DeviceInfo = &coremodel.DeviceInfoPayload{Text: text}
	e.emitter.Emit(ctx, ev)
}

// handleDisplayHalf display 半包与暂存的 index 半包合并；
// 无暂存值时单独发射，index 元数据缺失不影响文本可用性
func (e *Engine) handleDisplayHalf(ctx context.Context, pkt []byte) {
	text := decodeDisplayHalf(pkt)
	payload := &coremodel.ChannelDisplayPayload{Text: text}
	if h, ok := e.corr.TakeIndex(); ok {
		payload.Index = h.Index
		payload.Mode = h.Mode
		payload.HasIndex = true
	}
	ev := newEvent(e.deviceID, coremodel.EventChannelDisplay)
	ev.ChannelDisplay = payload
	e.emitter.Emit(ctx, ev)
}

// Reset 丢弃重组与配对的中间状态。连接关闭/重连时调用。
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.asm.Reset()
	e.corr.Reset()
}
