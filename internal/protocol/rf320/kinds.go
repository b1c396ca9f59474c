package rf320

// MessageKind 上行报文类型的封闭枚举。
// 分发层把十六进制头前缀一次性解析为 MessageKind，
// 之后走穷尽的 switch 选择解码器，未命中前缀落到 KindUnknown。
type MessageKind int

const (
	KindUnknown MessageKind = iota
	KindStatusShort
	KindFrequencyStatus
	KindBandInfo
	KindVolume
	KindSignal
	KindTimeOfDay
	KindFrequencyInput
	KindDeviceInfo
	KindDeviceInfoCont
	KindSubBandInfo
	KindLockStatus
	KindRecordingStatus
	KindFreqDataPart1
	KindFreqDataPart2
	KindBattery
	KindDetailedFrequency
	KindBandwidth
)

var kindNames = map[MessageKind]string{
	KindUnknown:           "unknown",
	KindStatusShort:       "status_short",
	KindFrequencyStatus:   "frequency_status",
	KindBandInfo:          "band_info",
	KindVolume:            "volume",
	KindSignal:            "signal",
	KindTimeOfDay:         "time_of_day",
	KindFrequencyInput:    "frequency_input",
	KindDeviceInfo:        "device_info",
	KindDeviceInfoCont:    "device_info_cont",
	KindSubBandInfo:       "sub_band_info",
	KindLockStatus:        "lock_status",
	KindRecordingStatus:   "recording_status",
	KindFreqDataPart1:     "freq_data_part1",
	KindFreqDataPart2:     "freq_data_part2",
	KindBattery:           "battery",
	KindDetailedFrequency: "detailed_frequency",
	KindBandwidth:         "bandwidth",
}

func (k MessageKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// kindSpec 前缀表条目：报文类型与该类型允许的最小总长
type kindSpec struct {
	kind   MessageKind
	minLen int
}

// prefix3 三字节前缀表（6个十六进制位），优先匹配。
// ab0510 是 ab05（电量族）下的特定子类型：第三字节 0x10 表示音量标签，
// 电量原始值只会是 0x00-0x07，不会与之冲突。
var prefix3 = map[string]kindSpec{
	"ab0510": {KindVolume, 6},
}

// prefix2 两字节前缀表（4个十六进制位），三字节未命中时回退。
// 第二字节是协议长度码，同一类型恒定，变长文本报文的真实长度与其无关。
var prefix2 = map[string]kindSpec{
	"ab01": {KindStatusShort, 4},
	"ab02": {KindStatusShort, 5},
	"ab05": {KindBattery, 6},
	"ab07": {KindSignal, 6},
	"ab09": {KindTimeOfDay, 8},
	"ab0a": {KindFrequencyInput, 6},
	"ab0d": {KindFrequencyStatus, 8},
	"ab10": {KindDeviceInfo, 6},
	"ab11": {KindDeviceInfoCont, 6},
	"ab12": {KindSubBandInfo, 8},
	"ab13": {KindLockStatus, 6},
	"ab14": {KindRecordingStatus, 7},
	"ab16": {KindBandInfo, 12},
	"ab18": {KindFreqDataPart1, 6},
	"ab19": {KindFreqDataPart2, 6},
	"ab1d": {KindDetailedFrequency, 10},
	"ab1e": {KindBandwidth, 6},
}

// MinLen 返回类型的最小总长约束；未知类型返回2（仅要求可提取前缀）。
// StatusShort 有两种定长形态（握手回显4字节、命令回显5字节），
// 逐形态的长度校验在 TryDecodeHeader 按长度码完成，这里返回两者下界，
// 不依赖前缀表的遍历顺序。
func (k MessageKind) MinLen() int {
	if k == KindStatusShort {
		return 4
	}
	for _, spec := range prefix3 {
		if spec.kind == k {
			return spec.minLen
		}
	}
	for _, spec := range prefix2 {
		if spec.kind == k {
			return spec.minLen
		}
	}
	return 2
}
