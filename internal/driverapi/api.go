package driverapi

import (
	"context"

	"github.com/taoyao-code/rf320-bridge/internal/coremodel"
)

// EventSink 接收协议引擎解出的类型化事件，由桥接核心（或测试）实现。
// 实现必须快速返回：回调运行在通知派发路径上，不允许阻塞。
type EventSink interface {
	HandleEvent(ctx context.Context, ev *coremodel.Event) error
}

// EventSinkFunc 函数适配器
type EventSinkFunc func(ctx context.Context, ev *coremodel.Event) error

func (f EventSinkFunc) HandleEvent(ctx context.Context, ev *coremodel.Event) error {
	return f(ctx, ev)
}
