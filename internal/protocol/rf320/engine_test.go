package rf320

import (
	"context"
	"sync"
	"testing"

	"github.com/taoyao-code/rf320-bridge/internal/coremodel"
	"github.com/taoyao-code/rf320-bridge/internal/driverapi"
)

// collector 测试用事件收集器
type collector struct {
	mu     sync.Mutex
	events []*coremodel.Event
}

func (c *collector) sink() driverapi.EventSink {
	return driverapi.EventSinkFunc(func(_ context.Context, ev *coremodel.Event) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.events = append(c.events, ev)
		return nil
	})
}

func (c *collector) all() []*coremodel.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*coremodel.Event, len(c.events))
	copy(out, c.events)
	return out
}

func newTestEngine(c *collector) *Engine {
	return NewEngine("dev", c.sink(), nil, nil)
}

func TestEngine_UnknownSurvival(t *testing.T) {
	col := &collector{}
	e := newTestEngine(col)

	// 带标记但前缀未识别的报文：一个 Unknown 事件，不恐慌不中断
	pkt := []byte{0xAB, 0x66, 0x77, 0x01, 0x02, 0x03}
	e.HandleNotification(context.Background(), pkt)

	evs := col.all()
	if len(evs) != 1 || evs[0].Type != coremodel.EventUnknown {
		t.Fatalf("events = %+v", evs)
	}
	if len(evs[0].Unknown.Raw) != len(pkt) {
		t.Fatal("raw bytes not preserved")
	}
}

func TestEngine_ShortPacketNeverReachesDecoder(t *testing.T) {
	col := &collector{}
	e := newTestEngine(col)

	// band_info 前缀但低于最小长度：结构化拒绝，不产生事件
	e.HandleNotification(context.Background(), []byte{0xAB, 0x16, 0x02})
	if len(col.all()) != 0 {
		t.Fatalf("expected no events, got %d", len(col.all()))
	}
}

func TestEngine_ChecksumMismatchDropped(t *testing.T) {
	col := &collector{}
	e := newTestEngine(col)

	e.HandleNotification(context.Background(), []byte{0xAB, 0x02, 0x0C, 0x14, 0x00})
	if len(col.all()) != 0 {
		t.Fatalf("corrupted echo produced events: %+v", col.all())
	}
}

func TestEngine_DecoderFailureDowngradedToUnknown(t *testing.T) {
	col := &collector{}
	e := newTestEngine(col)

	// frequency_status 前缀但BCD非法：降级为 Unknown，不中断后续报文
	e.HandleNotification(context.Background(), []byte{0xAB, 0x0D, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00})
	e.HandleNotification(context.Background(), []byte{0xAB, 0x05, 0x07, 0x00, 0x00, 0x00})

	evs := col.all()
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Type != coremodel.EventUnknown {
		t.Fatalf("first event = %s, want unknown", evs[0].Type)
	}
	if evs[1].Type != coremodel.EventBattery || evs[1].Battery.Percent != 100 {
		t.Fatalf("second event = %+v", evs[1])
	}
}

func TestEngine_DeviceInfoReassembly(t *testing.T) {
	col := &collector{}
	e := newTestEngine(col)
	ctx := context.Background()

	mk := func(lenCode, part byte, text string, trailing byte) []byte {
		pkt := append([]byte{0xAB, lenCode, part, byte(len(text))}, text...)
		return append(pkt, trailing)
	}

	e.HandleNotification(ctx, mk(0x10, 0x01, "Radio version : ", 0x00))
	e.HandleNotification(ctx, mk(0x11, 0x02, "V4.0\nModel : ", 0x00))
	if len(col.all()) != 0 {
		t.Fatal("event emitted before terminal fragment")
	}
	e.HandleNotification(ctx, mk(0x11, 0x03, "Raddy RF320\n\nsupport@iraddy.com", 0xFF))

	evs := col.all()
	if len(evs) != 1 || evs[0].Type != coremodel.EventDeviceInfo {
		t.Fatalf("events = %+v", evs)
	}
	want := "Radio version : V4.0\nModel : Raddy RF320\n\nsupport@iraddy.com"
	if evs[0].DeviceInfo.Text != want {
		t.Fatalf("text = %q, want %q", evs[0].DeviceInfo.Text, want)
	}
}

func TestEngine_ChannelDisplayPairing(t *testing.T) {
	col := &collector{}
	e := newTestEngine(col)
	ctx := context.Background()

	// index 半包（index=0x1C06, mode=0x31）先到，display 半包携带 "31"
	e.HandleNotification(ctx, []byte{0xAB, 0x18, 0x1C, 0x06, 0x31, 0x00})
	if len(col.all()) != 0 {
		t.Fatal("index half alone emitted an event")
	}
	e.HandleNotification(ctx, []byte{0xAB, 0x19, 0x02, '3', '1', 0x00})

	evs := col.all()
	if len(evs) != 1 || evs[0].Type != coremodel.EventChannelDisplay {
		t.Fatalf("events = %+v", evs)
	}
	cd := evs[0].ChannelDisplay
	if cd.Text != "31" || !cd.HasIndex || cd.Index != 0x1C06 || cd.Mode != 0x31 {
		t.Fatalf("channel display = %+v", cd)
	}
}

func TestEngine_DisplayHalfAloneStillEmits(t *testing.T) {
	col := &collector{}
	e := newTestEngine(col)

	e.HandleNotification(context.Background(), []byte{0xAB, 0x19, 0x02, '3', '1', 0x00})

	evs := col.all()
	if len(evs) != 1 || evs[0].Type != coremodel.EventChannelDisplay {
		t.Fatalf("events = %+v", evs)
	}
	if evs[0].ChannelDisplay.HasIndex {
		t.Fatal("index metadata present without index half")
	}
}

func TestEngine_InstancesAreIsolated(t *testing.T) {
	// 重组/配对状态是连接作用域字段，两个引擎互不干扰
	colA, colB := &collector{}, &collector{}
	a, b := newTestEngine(colA), newTestEngine(colB)
	ctx := context.Background()

	a.HandleNotification(ctx, []byte{0xAB, 0x18, 0x1C, 0x06, 0x31, 0x00})
	b.HandleNotification(ctx, []byte{0xAB, 0x19, 0x02, '3', '1', 0x00})

	evs := colB.all()
	if len(evs) != 1 || evs[0].ChannelDisplay.HasIndex {
		t.Fatalf("engine B saw engine A's index half: %+v", evs)
	}
}

func TestEngine_ResetDiscardsPartialState(t *testing.T) {
	col := &collector{}
	e := newTestEngine(col)
	ctx := context.Background()

	e.HandleNotification(ctx, append([]byte{0xAB, 0x10, 0x01, 0x04}, []byte("part")...))
	e.Reset()
	// 重启后的末片只包含自己的文本
	pkt := append([]byte{0xAB, 0x10, 0x01, 0x09}, []byte("fresh.com")...)
	e.HandleNotification(ctx, append(pkt, 0xFF))

	evs := col.all()
	if len(evs) != 1 || evs[0].DeviceInfo.Text != "fresh.com" {
		t.Fatalf("events = %+v", evs)
	}
}
