package rf320

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/taoyao-code/rf320-bridge/internal/coremodel"
)

// 字段级解码器。每个解码器拿到的是已通过最小长度约束的完整报文。
// 变长 ASCII 报文的通用布局：
//   [头(2-3字节)] [索引/长度字段] [textLen] [ASCII文本 textLen字节] [尾字节]
// textLen 为权威值；越界时截断到可用字节而非报错。
// ASCII 之外的字节原样透传，协议不转义控制字符。

var (
	// ErrBadPayload 字段布局不满足该类型约定
	ErrBadPayload = errors.New("bad payload")
	// ErrBadBCD BCD 半字节超出 0-9
	ErrBadBCD = errors.New("bad bcd nibble")
)

func newEvent(dev coremodel.DeviceID, typ coremodel.EventType) *coremodel.Event {
	return &coremodel.Event{Type: typ, DeviceID: dev, OccurredAt: time.Now()}
}

// asciiField 按 textLen 提取 ASCII 字段，越界时优雅截断
func asciiField(pkt []byte, lenPos int) string {
	if lenPos >= len(pkt) {
		return ""
	}
	textLen := int(pkt[lenPos])
	start := lenPos + 1
	if start >= len(pkt) {
		return ""
	}
	end := start + textLen
	if end > len(pkt) {
		end = len(pkt)
	}
	return string(pkt[start:end])
}

// decodeBCD32 解出打包 BCD 半字节序列（高半字节在前）
func decodeBCD32(b []byte) (uint32, error) {
	var v uint32
	for _, x := range b {
		hi, lo := x>>4, x&0x0F
		if hi > 9 || lo > 9 {
			return 0, ErrBadBCD
		}
		v = v*100 + uint32(hi)*10 + uint32(lo)
	}
	return v, nil
}

// decodeCommandEcho 解出固定回显帧（握手4字节 / 命令5字节）
func decodeCommandEcho(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventCommandEcho)
	raw := make([]byte, len(pkt))
	copy(raw, pkt)
	switch {
	case len(pkt) == 4:
		// 握手回显，无命令ID
		ev.CommandEcho = &coremodel.CommandEchoPayload{Group: HandshakeLenCode, CommandID: 0xFF, Raw: raw}
	case len(pkt) == 5:
		ev.CommandEcho = &coremodel.CommandEchoPayload{Group: pkt[2], CommandID: pkt[3], Raw: raw}
	default:
		return nil, ErrBadPayload
	}
	return ev, nil
}

// decodeFrequencyStatus 解出当前频率。
// 布局：AB 0D <bcd[4]> <flags> <trailing>，4字节打包BCD共8位数字，
// 单位 0.1kHz。与 BandInfo 的小端 Hz 布局是协议本身的差异，不可合并。
func decodeFrequencyStatus(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	v, err := decodeBCD32(pkt[2:6])
	if err != nil {
		return nil, err
	}
	ev := newEvent(dev, coremodel.EventFrequencyStatus)
	ev.FrequencyStatus = &coremodel.FrequencyStatusPayload{
		FrequencyKHz10: v,
		Stereo:         pkt[6]&0x01 != 0,
	}
	return ev, nil
}

// decodeBandInfo 解出波段信息。
// 布局：AB 16 <band> <freqHz LE32> <sub1..4> <trailing>
func decodeBandInfo(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventBandInfo)
	ev.BandInfo = &coremodel.BandInfoPayload{
		BandCode:    pkt[2],
		FrequencyHz: binary.LittleEndian.Uint32(pkt[3:7]),
		SubBand1:    pkt[7],
		SubBand2:    pkt[8],
		SubBand3:    pkt[9],
		SubBand4:    pkt[10],
	}
	return ev, nil
}

// decodeVolume 解出音量等级 0-15。布局：AB 05 10 <level> <res> <trailing>
func decodeVolume(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventVolume)
	ev.Volume = &coremodel.VolumePayload{Level: int(pkt[3] & 0x0F)}
	return ev, nil
}

// decodeSignal 解出信号强度。布局：AB 07 <level> ...
func decodeSignal(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventSignalStrength)
	ev.SignalStrength = &coremodel.SignalStrengthPayload{Level: int(pkt[2])}
	return ev, nil
}

// decodeBattery 解出电量。布局：AB 05 <raw 0-7> ...
// percent = raw*100/7 整除截断，夹到 [0,100]。
// 0-7 刻度换算是逆向分析的近似结论，不是精确标定。
func decodeBattery(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	raw := pkt[2]
	percent := int(raw) * 100 / 7
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	ev := newEvent(dev, coremodel.EventBattery)
	ev.Battery = &coremodel.BatteryPayload{Raw: raw, Percent: percent}
	return ev, nil
}

// decodeTimeOfDay 解出设备时钟。布局：AB 09 <hh> <mm> <ss> ...
func decodeTimeOfDay(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	h, m, s := int(pkt[2]), int(pkt[3]), int(pkt[4])
	if h > 23 || m > 59 || s > 59 {
		return nil, ErrBadPayload
	}
	ev := newEvent(dev, coremodel.EventTimeOfDay)
	ev.TimeOfDay = &coremodel.TimeOfDayPayload{Hour: h, Minute: m, Second: s}
	return ev, nil
}

// decodeFrequencyInput 解出输入中的频率数字串。布局：AB 0A <textLen> <text> <trailing>
func decodeFrequencyInput(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventFrequencyInput)
	ev.FrequencyInput = &coremodel.FrequencyInputPayload{Text: asciiField(pkt, 2)}
	return ev, nil
}

// decodeSubBandInfo 解出子波段。布局：AB 12 <band> <sub> <stepKHz LE16> <trailing>
func decodeSubBandInfo(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventSubBandInfo)
	ev.SubBandInfo = &coremodel.SubBandInfoPayload{
		BandCode: pkt[2],
		SubBand:  pkt[3],
		StepKHz:  int(binary.LittleEndian.Uint16(pkt[4:6])),
	}
	return ev, nil
}

// decodeLockStatus 解出按键锁。布局：AB 13 <locked> ...
func decodeLockStatus(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventLockStatus)
	ev.LockStatus = &coremodel.LockStatusPayload{Locked: pkt[2] != 0}
	return ev, nil
}

// decodeRecordingStatus 解出录音状态。布局：AB 14 <active> <slot> ...
func decodeRecordingStatus(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventRecordingStatus)
	ev.RecordingStatus = &coremodel.RecordingStatusPayload{
		Active:    pkt[2] != 0,
		SlotIndex: int(pkt[3]),
	}
	return ev, nil
}

// decodeDetailedFrequency 解出精细频率。布局：AB 1D <freqHz LE32> <decimalPos> ...
func decodeDetailedFrequency(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventDetailedFrequency)
	ev.DetailedFrequency = &coremodel.DetailedFrequencyPayload{
		FrequencyHz: binary.LittleEndian.Uint32(pkt[2:6]),
		DecimalPos:  int(pkt[6]),
	}
	return ev, nil
}

// decodeBandwidth 解出解调带宽码。布局：AB 1E <code> ...
func decodeBandwidth(dev coremodel.DeviceID, pkt []byte) (*coremodel.Event, error) {
	ev := newEvent(dev, coremodel.EventBandwidth)
	ev.Bandwidth = &coremodel.BandwidthPayload{Code: pkt[2]}
	return ev, nil
}

// infoFragment 设备信息报文的片段视图（交给重组缓冲）
type infoFragment struct {
	Text     string
	Terminal bool
}

// decodeInfoFragment 解出设备信息片段。
// 布局：AB 10/11 <partIdx> <textLen> <text> <trailing>。
// 尾字节 0xFF 标记末片；因末片标记并不总是可靠，文本内含 ".com"/".net"
// 也按末片处理（实测设备信息以支持邮箱/网址结尾）。
func decodeInfoFragment(pkt []byte) infoFragment {
	text := asciiField(pkt, 3)
	terminal := pkt[len(pkt)-1] == terminalMarker || containsTerminalText(text)
	return infoFragment{Text: text, Terminal: terminal}
}

// indexHalf 双包配对中的 index 半包
type indexHalf struct {
	Index uint16
	Mode  byte
}

// decodeIndexHalf 解出 index 半包。布局：AB 18 <index BE16> <mode> <trailing>
func decodeIndexHalf(pkt []byte) indexHalf {
	return indexHalf{
		Index: binary.BigEndian.Uint16(pkt[2:4]),
		Mode:  pkt[4],
	}
}

// decodeDisplayHalf 解出 display 半包文本。布局：AB 19 <textLen> <text> <trailing>
func decodeDisplayHalf(pkt []byte) string {
	return asciiField(pkt, 2)
}
