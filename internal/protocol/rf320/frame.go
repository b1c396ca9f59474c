package rf320

// RF320 BLE 协议帧结构
// 下行命令帧格式：AB 02 <group> <cmdId> <checksum>，固定5字节
// 握手帧格式：AB 01 FF AB，固定4字节，无校验和
// 上行状态帧格式：AB <lenCode> <fields...> <trailing>，变长
// 注意：lenCode 是协议规定的长度码，并非真实字节数

// Marker 帧起始标记
const Marker byte = 0xAB

// FrameLenCode 标准命令帧的长度码（第二字节）
const FrameLenCode byte = 0x02

// HandshakeLenCode 握手帧的长度码
const HandshakeLenCode byte = 0x01

// Group 命令分组
type Group byte

const (
	// GroupButton 按键命令组
	GroupButton Group = 0x0C
	// GroupAck 确认应答命令组
	GroupAck Group = 0x12
)

// checksumBase 返回分组校验基值：帧头三字节（marker+lenCode+group）的累加值。
// Button 组为 0xB9，Ack 组为 0xBF。
func (g Group) checksumBase() byte {
	return Marker + FrameLenCode + byte(g)
}

// Valid 判断分组是否属于封闭集合
func (g Group) Valid() bool {
	return g == GroupButton || g == GroupAck
}

func (g Group) String() string {
	switch g {
	case GroupButton:
		return "button"
	case GroupAck:
		return "ack"
	}
	return "invalid"
}

// Frame 一次下行命令。值对象：每次发送构造一次，不可变。
type Frame struct {
	Group     Group
	CommandID byte
}

// Checksum 计算帧校验和：(分组基值 + 命令ID) mod 256
func (f Frame) Checksum() byte {
	return f.Group.checksumBase() + f.CommandID
}

// Encode 编码为5字节线缆格式
func (f Frame) Encode() []byte {
	return []byte{Marker, FrameLenCode, byte(f.Group), f.CommandID, f.Checksum()}
}

// handshakeFrame 握手帧固定字面量，协议特例，不走校验和公式
var handshakeFrame = []byte{Marker, HandshakeLenCode, 0xFF, Marker}

// EncodeHandshake 编码4字节握手帧
func EncodeHandshake() []byte {
	out := make([]byte, len(handshakeFrame))
	copy(out, handshakeFrame)
	return out
}
