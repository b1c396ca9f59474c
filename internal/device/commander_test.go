package device

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/rf320-bridge/internal/protocol/rf320"
	"github.com/taoyao-code/rf320-bridge/internal/transport"
)

// fakeTransport 测试替身：记录写入、可注入写失败、手工投递通知与信号
type fakeTransport struct {
	mu       sync.Mutex
	writes   [][]byte
	writeErr error
	notify   func([]byte)
	sigC     chan transport.Signal
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sigC: make(chan transport.Signal, 8)}
}

func (f *fakeTransport) Connect(context.Context) error { return nil }

func (f *fakeTransport) Write(_ context.Context, p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	dup := make([]byte, len(p))
	copy(dup, p)
	f.writes = append(f.writes, dup)
	return nil
}

func (f *fakeTransport) SetNotifyHandler(fn func(data []byte)) { f.notify = fn }

func (f *fakeTransport) Signals() <-chan transport.Signal { return f.sigC }

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func readyMachine(t *testing.T) *StateMachine {
	t.Helper()
	m := NewStateMachine()
	require.NoError(t, m.Connect())
	require.NoError(t, m.LinkEstablished())
	require.NoError(t, m.CapabilitiesFound())
	require.NoError(t, m.CapabilitiesResolved())
	return m
}

func TestCommander_NotReadyFailsFastWithoutWrite(t *testing.T) {
	tr := newFakeTransport()
	c := NewCommander(tr, NewStateMachine(), nil, nil, 10*time.Millisecond)

	res := c.SendButton(context.Background(), rf320.CmdVolumeUp)
	assert.False(t, res.Success)
	assert.Equal(t, ErrNotReady.Error(), res.Err)
	// 不排队、不写传输层
	assert.Zero(t, tr.writeCount())
}

func TestCommander_SendEncodesFrame(t *testing.T) {
	tr := newFakeTransport()
	c := NewCommander(tr, readyMachine(t), nil, nil, 5*time.Millisecond)

	res := c.SendButton(context.Background(), rf320.CmdVolumeUp)
	require.True(t, res.Success)
	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, []byte{0xAB, 0x02, 0x0C, 0x12, 0xCB}, res.SentBytes)
	assert.Equal(t, 1, tr.writeCount())
	// 无回显：超时降级为「已发送、无响应」
	assert.Nil(t, res.Response)
}

func TestCommander_WriteFailureReported(t *testing.T) {
	tr := newFakeTransport()
	tr.writeErr = errors.New("gatt write failed")
	c := NewCommander(tr, readyMachine(t), nil, nil, 5*time.Millisecond)

	res := c.SendButton(context.Background(), rf320.CmdBand)
	assert.False(t, res.Success)
	assert.Equal(t, "gatt write failed", res.Err)
}

func TestCommander_EchoCorrelation(t *testing.T) {
	tr := newFakeTransport()
	c := NewCommander(tr, readyMachine(t), nil, nil, 200*time.Millisecond)

	done := make(chan Result, 1)
	go func() {
		done <- c.SendButton(context.Background(), rf320.CmdTuneUp)
	}()

	// 等写入落地后投递匹配回显
	require.Eventually(t, func() bool { return tr.writeCount() == 1 },
		time.Second, time.Millisecond)
	echo := rf320.Frame{Group: rf320.GroupButton, CommandID: rf320.CmdTuneUp}.Encode()
	c.OnEcho(byte(rf320.GroupButton), rf320.CmdTuneUp, echo)

	res := <-done
	require.True(t, res.Success)
	assert.Equal(t, echo, res.Response)
}

func TestCommander_MismatchedEchoIgnored(t *testing.T) {
	tr := newFakeTransport()
	c := NewCommander(tr, readyMachine(t), nil, nil, 30*time.Millisecond)

	done := make(chan Result, 1)
	go func() {
		done <- c.SendButton(context.Background(), rf320.CmdTuneUp)
	}()
	require.Eventually(t, func() bool { return tr.writeCount() == 1 },
		time.Second, time.Millisecond)
	// 不匹配的回显不唤醒等待者
	c.OnEcho(byte(rf320.GroupButton), rf320.CmdBand, []byte{0x01})

	res := <-done
	require.True(t, res.Success)
	assert.Nil(t, res.Response)
}

func TestCommander_SingleInFlight(t *testing.T) {
	tr := newFakeTransport()
	c := NewCommander(tr, readyMachine(t), nil, nil, 20*time.Millisecond)

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := c.SendButton(context.Background(), rf320.CmdDigit1)
			assert.True(t, res.Success)
		}()
	}
	wg.Wait()
	// 三条命令串行：每条至少等满响应窗口
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	assert.Equal(t, 3, tr.writeCount())
}

func TestCommander_GateAcquisitionHonorsContext(t *testing.T) {
	tr := newFakeTransport()
	c := NewCommander(tr, readyMachine(t), nil, nil, 300*time.Millisecond)

	first := make(chan Result, 1)
	go func() { first <- c.SendButton(context.Background(), rf320.CmdDigit1) }()
	require.Eventually(t, func() bool { return tr.writeCount() == 1 },
		time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := c.SendButton(ctx, rf320.CmdDigit2)
	assert.False(t, res.Success)
	assert.Equal(t, context.Canceled.Error(), res.Err)
	<-first
}

func TestCommander_SendAck(t *testing.T) {
	tr := newFakeTransport()
	c := NewCommander(tr, readyMachine(t), nil, nil, 200*time.Millisecond)

	done := make(chan Result, 1)
	go func() {
		done <- c.SendAck(context.Background(), rf320.CmdAckStatus)
	}()
	require.Eventually(t, func() bool { return tr.writeCount() == 1 },
		time.Second, time.Millisecond)

	// 确认组的校验基值与按键组不同（0xBF 对 0xB9）
	echo := rf320.Frame{Group: rf320.GroupAck, CommandID: rf320.CmdAckStatus}.Encode()
	c.OnEcho(byte(rf320.GroupAck), rf320.CmdAckStatus, echo)

	res := <-done
	require.True(t, res.Success)
	assert.Equal(t, []byte{0xAB, 0x02, 0x12, 0x01, 0xC0}, res.SentBytes)
	assert.Equal(t, echo, res.Response)
}

func TestCommander_Handshake(t *testing.T) {
	tr := newFakeTransport()
	c := NewCommander(tr, readyMachine(t), nil, nil, 5*time.Millisecond)

	res := c.SendHandshake(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, []byte{0xAB, 0x01, 0xFF, 0xAB}, res.SentBytes)
}
