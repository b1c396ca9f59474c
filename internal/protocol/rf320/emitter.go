package rf320

import (
	"context"

	"go.uber.org/zap"

	"github.com/taoyao-code/rf320-bridge/internal/coremodel"
	"github.com/taoyao-code/rf320-bridge/internal/driverapi"
)

// EventEmitter 事件发射器，统一处理事件发送、日志记录与错误吞吐。
// 引擎对每个事件只发射一次，之后不再持有。
type EventEmitter struct {
	sink   driverapi.EventSink
	logger *zap.Logger
}

// NewEventEmitter 创建事件发射器
func NewEventEmitter(sink driverapi.EventSink, logger *zap.Logger) *EventEmitter {
	return &EventEmitter{sink: sink, logger: logger}
}

// Emit 发射事件（sink 报错只记日志，不会中断后续报文处理）
func (e *EventEmitter) Emit(ctx context.Context, ev *coremodel.Event) {
	if ev == nil {
		return
	}
	if e.sink == nil {
		if e.logger != nil {
			e.logger.Warn("event sink not configured, event dropped",
				zap.String("event_type", string(ev.Type)),
				zap.String("device_id", string(ev.DeviceID)))
		}
		return
	}
	if err := e.sink.HandleEvent(ctx, ev); err != nil && e.logger != nil {
		e.logger.Error("failed to emit event",
			zap.String("event_type", string(ev.Type)),
			zap.String("device_id", string(ev.DeviceID)),
			zap.Error(err))
	}
}
