package device

import (
	"errors"
	"sync"
)

// 连接状态机。状态由它独占持有，命令串行器只读取用于发送门禁。

// State 连接就绪状态
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateDiscoveringCapabilities
	StateReady
	StateError
)

var stateNames = map[State]string{
	StateDisconnected:            "disconnected",
	StateConnecting:              "connecting",
	StateConnected:               "connected",
	StateDiscoveringCapabilities: "discovering_capabilities",
	StateReady:                   "ready",
	StateError:                   "error",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

var (
	// ErrNotReady 非 Ready 状态下的发送请求，快速失败，不排队不静默重试
	ErrNotReady = errors.New("device not ready")
	// ErrBadTransition 非法状态迁移
	ErrBadTransition = errors.New("invalid state transition")
)

// StateMachine 连接状态机：
// Disconnected -connect-> Connecting -linkEstablished-> Connected
// -capabilitiesFound-> DiscoveringCapabilities -resolved-> Ready。
// 任意状态下的意外断链都回到 Disconnected（而非 Error）；
// Error 只保留给能力发现失败与连接请求被拒两种情况。
type StateMachine struct {
	mu        sync.RWMutex
	state     State
	observers []func(old, new State)
}

// NewStateMachine 创建状态机，初始 Disconnected
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateDisconnected}
}

// State 返回当前状态
func (m *StateMachine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Ready 命令发送门禁
func (m *StateMachine) Ready() bool {
	return m.State() == StateReady
}

// Observe 注册状态变更观察者（回调在持锁外执行）
func (m *StateMachine) Observe(fn func(old, new State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *StateMachine) transition(to State, allowedFrom ...State) error {
	m.mu.Lock()
	old := m.state
	allowed := len(allowedFrom) == 0
	for _, s := range allowedFrom {
		if old == s {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		return ErrBadTransition
	}
	m.state = to
	obs := make([]func(old, new State), len(m.observers))
	copy(obs, m.observers)
	m.mu.Unlock()

	for _, fn := range obs {
		fn(old, to)
	}
	return nil
}

// Connect 发起连接
func (m *StateMachine) Connect() error {
	return m.transition(StateConnecting, StateDisconnected)
}

// LinkEstablished 链路建立
func (m *StateMachine) LinkEstablished() error {
	return m.transition(StateConnected, StateConnecting)
}

// CapabilitiesFound 进入能力发现
func (m *StateMachine) CapabilitiesFound() error {
	return m.transition(StateDiscoveringCapabilities, StateConnected)
}

// CapabilitiesResolved 必需的写/通知能力全部就绪
func (m *StateMachine) CapabilitiesResolved() error {
	return m.transition(StateReady, StateDiscoveringCapabilities)
}

// LinkLost 意外断链：从任何状态回到 Disconnected
func (m *StateMachine) LinkLost() {
	_ = m.transition(StateDisconnected)
}

// Fail 进入 Error：能力发现失败或连接请求在编解码层被拒
func (m *StateMachine) Fail() {
	_ = m.transition(StateError)
}
