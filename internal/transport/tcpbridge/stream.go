package tcpbridge

import "github.com/taoyao-code/rf320-bridge/internal/protocol/rf320"

// TCP 是字节流，通知可能半包/粘包到达。模拟器链路在每帧前加一个
// 长度字节（真实字节数，区别于协议内的长度码），这里按其切分并在
// 畸形数据上滑动一字节重新同步。

// maxFrameLen 保护上限：长度字节本身最大255，再宽也超不过去
const maxFrameLen = 255

// StreamDecoder 处理半包/粘包的流式切分器
type StreamDecoder struct {
	buf []byte
}

// NewStreamDecoder 创建流式切分器
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

// Feed 追加字节并尽可能切出完整帧
func (d *StreamDecoder) Feed(p []byte) [][]byte {
	if len(p) == 0 {
		return nil
	}
	d.buf = append(d.buf, p...)
	var out [][]byte

	for {
		if len(d.buf) < 2 {
			return out
		}
		n := int(d.buf[0])
		// 长度必须至少容纳 marker+长度码；帧首字节必须是 marker，
		// 否则丢弃1字节继续同步
		if n < 2 || d.buf[1] != rf320.Marker {
			d.buf = d.buf[1:]
			continue
		}
		if len(d.buf) < 1+n {
			// 半包，等待更多
			return out
		}
		frame := make([]byte, n)
		copy(frame, d.buf[1:1+n])
		d.buf = d.buf[1+n:]
		out = append(out, frame)
	}
}
