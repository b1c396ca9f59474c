package coremodel

import "time"

// DeviceID 统一设备标识类型（BLE MAC 或模拟器地址）
type DeviceID string

// EventType 解码事件类型
type EventType string

const (
	EventFrequencyStatus   EventType = "frequency_status"
	EventBandInfo          EventType = "band_info"
	EventVolume            EventType = "volume"
	EventSignalStrength    EventType = "signal_strength"
	EventBattery           EventType = "battery"
	EventLockStatus        EventType = "lock_status"
	EventRecordingStatus   EventType = "recording_status"
	EventChannelDisplay    EventType = "channel_display"
	EventDeviceInfo        EventType = "device_info"
	EventTimeOfDay         EventType = "time_of_day"
	EventFrequencyInput    EventType = "frequency_input"
	EventSubBandInfo       EventType = "sub_band_info"
	EventDetailedFrequency EventType = "detailed_frequency"
	EventBandwidth         EventType = "bandwidth"
	EventCommandEcho       EventType = "command_echo"
	EventUnknown           EventType = "unknown"
)

// FrequencyStatusPayload 当前调谐频率（BCD 打包布局解出，单位 kHz 的十分之一）
type FrequencyStatusPayload struct {
	FrequencyKHz10 uint32 // 以 0.1kHz 为单位的频率值
	Stereo         bool
}

// BandInfoPayload 波段信息（频率为 4 字节小端 Hz，与 FrequencyStatus 的布局不同，
// 两种布局是设备协议本身的差异，解码器不可合并）
type BandInfoPayload struct {
	BandCode    byte
	FrequencyHz uint32
	SubBand1    byte
	SubBand2    byte
	SubBand3    byte
	SubBand4    byte
}

// VolumePayload 音量等级 0-15
type VolumePayload struct {
	Level int
}

// SignalStrengthPayload 信号强度
type SignalStrengthPayload struct {
	Level int
}

// BatteryPayload 电量百分比。
// 原始值为 0-7 刻度，percent = raw*100/7 截断取整后夹到 [0,100]。
// 该换算来自不完整的逆向分析，是近似值而非精确标定。
type BatteryPayload struct {
	Raw     byte
	Percent int
}

// LockStatusPayload 按键锁状态
type LockStatusPayload struct {
	Locked bool
}

// RecordingStatusPayload 录音状态
type RecordingStatusPayload struct {
	Active    bool
	SlotIndex int
}

// ChannelDisplayPayload 频道显示文本，Index/Mode 来自配对的 index 半包，可能缺失
type ChannelDisplayPayload struct {
	Text     string
	Index    uint16
	Mode     byte
	HasIndex bool
}

// DeviceInfoPayload 设备信息多片段拼接后的完整文本
type DeviceInfoPayload struct {
	Text string
}

// TimeOfDayPayload 设备时钟
type TimeOfDayPayload struct {
	Hour   int
	Minute int
	Second int
}

// FrequencyInputPayload 正在输入的频率数字串
type FrequencyInputPayload struct {
	Text string
}

// SubBandInfoPayload 子波段细分信息
type SubBandInfoPayload struct {
	BandCode byte
	SubBand  byte
	StepKHz  int
}

// DetailedFrequencyPayload 精细频率（含小数位）
type DetailedFrequencyPayload struct {
	FrequencyHz uint32
	DecimalPos  int
}

// BandwidthPayload 解调带宽
type BandwidthPayload struct {
	Code byte
}

// CommandEchoPayload 命令回显帧（设备确认收到命令）
type CommandEchoPayload struct {
	Group     byte
	CommandID byte
	Raw       []byte
}

// UnknownPayload 未识别报文，原始字节原样保留供诊断
type UnknownPayload struct {
	Raw []byte
}

// Event 引擎输出的类型化事件。Type 决定哪个载荷字段非 nil。
// 事件由解码器构造、发射一次后引擎不再持有，历史由调用方自行保存。
type Event struct {
	Type       EventType
	DeviceID   DeviceID
	OccurredAt time.Time

	FrequencyStatus   *FrequencyStatusPayload
	BandInfo          *BandInfoPayload
	Volume            *VolumePayload
	SignalStrength    *SignalStrengthPayload
	Battery           *BatteryPayload
	LockStatus        *LockStatusPayload
	RecordingStatus   *RecordingStatusPayload
	ChannelDisplay    *ChannelDisplayPayload
	DeviceInfo        *DeviceInfoPayload
	TimeOfDay         *TimeOfDayPayload
	FrequencyInput    *FrequencyInputPayload
	SubBandInfo       *SubBandInfoPayload
	DetailedFrequency *DetailedFrequencyPayload
	Bandwidth         *BandwidthPayload
	CommandEcho       *CommandEchoPayload
	Unknown           *UnknownPayload
}
