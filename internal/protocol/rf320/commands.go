package rf320

// 按键命令表。协议命令集是封闭的：短按 0x00-0x17，
// 长按变体 0x35-0x49（短按 0x00-0x14 各自 +0x35）。

const (
	CmdBand       byte = 0x00
	CmdDigit1     byte = 0x01
	CmdDigit2     byte = 0x02
	CmdDigit3     byte = 0x03
	CmdDigit4     byte = 0x04
	CmdDigit5     byte = 0x05
	CmdDigit6     byte = 0x06
	CmdDigit7     byte = 0x07
	CmdDigit8     byte = 0x08
	CmdDigit9     byte = 0x09
	CmdDigit0     byte = 0x0A
	CmdPoint      byte = 0x0B
	CmdBack       byte = 0x0C
	CmdConfirm    byte = 0x0D
	CmdPower      byte = 0x0E
	CmdMode       byte = 0x0F
	CmdMute       byte = 0x10
	CmdPreset     byte = 0x11
	CmdVolumeUp   byte = 0x12
	CmdVolumeDown byte = 0x13
	CmdTuneUp     byte = 0x14
	CmdTuneDown   byte = 0x15
	CmdLock       byte = 0x16
	CmdRecord     byte = 0x17
)

// 长按变体区间
const (
	longPressOffset byte = 0x35
	CmdLongMin      byte = 0x35
	CmdLongMax      byte = 0x49
)

// CmdAckStatus Ack 组的状态确认命令
const CmdAckStatus byte = 0x01

// buttonNames 命令名 -> 命令ID（HTTP 控制面按名下发时使用）
var buttonNames = map[string]byte{
	"band":        CmdBand,
	"digit_1":     CmdDigit1,
	"digit_2":     CmdDigit2,
	"digit_3":     CmdDigit3,
	"digit_4":     CmdDigit4,
	"digit_5":     CmdDigit5,
	"digit_6":     CmdDigit6,
	"digit_7":     CmdDigit7,
	"digit_8":     CmdDigit8,
	"digit_9":     CmdDigit9,
	"digit_0":     CmdDigit0,
	"point":       CmdPoint,
	"back":        CmdBack,
	"confirm":     CmdConfirm,
	"power":       CmdPower,
	"mode":        CmdMode,
	"mute":        CmdMute,
	"preset":      CmdPreset,
	"volume_up":   CmdVolumeUp,
	"volume_down": CmdVolumeDown,
	"tune_up":     CmdTuneUp,
	"tune_down":   CmdTuneDown,
	"lock":        CmdLock,
	"record":      CmdRecord,
}

// ButtonByName 按名称查命令ID
func ButtonByName(name string) (byte, bool) {
	id, ok := buttonNames[name]
	return id, ok
}

// KnownButton 判断命令ID是否属于封闭命令集（短按或长按变体）
func KnownButton(id byte) bool {
	if id <= CmdRecord {
		return true
	}
	return id >= CmdLongMin && id <= CmdLongMax
}

// LongPress 返回短按命令对应的长按变体ID；超出可长按范围时返回原值与 false
func LongPress(id byte) (byte, bool) {
	if id > CmdTuneUp {
		return id, false
	}
	return id + longPressOffset, true
}

// KnownButtonIDs 返回全部合法按键命令ID（测试与回环校验使用）
func KnownButtonIDs() []byte {
	ids := make([]byte, 0, 0x18+0x15)
	for id := CmdBand; id <= CmdRecord; id++ {
		ids = append(ids, id)
	}
	for id := CmdLongMin; id <= CmdLongMax; id++ {
		ids = append(ids, id)
	}
	return ids
}
