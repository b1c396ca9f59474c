package device

import (
	"sync"

	"github.com/taoyao-code/rf320-bridge/internal/coremodel"
)

// EventLog 近期事件环形缓冲。引擎本身不保留事件历史，
// 这里是调用方（桥接进程）为 HTTP 查询保留的一小段窗口。
type EventLog struct {
	mu   sync.Mutex
	buf  []*coremodel.Event
	next int
	full bool
}

// NewEventLog 创建容量为 size 的环形缓冲
func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = 128
	}
	return &EventLog{buf: make([]*coremodel.Event, size)}
}

// Append 记录一个事件
func (l *EventLog) Append(ev *coremodel.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf[l.next] = ev
	l.next = (l.next + 1) % len(l.buf)
	if l.next == 0 {
		l.full = true
	}
}

// Snapshot 返回事件快照，新事件在前
func (l *EventLog) Snapshot() []*coremodel.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.next
	if l.full {
		n = len(l.buf)
	}
	out := make([]*coremodel.Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.buf)) % len(l.buf)
		if l.buf[idx] != nil {
			out = append(out, l.buf[idx])
		}
	}
	return out
}
