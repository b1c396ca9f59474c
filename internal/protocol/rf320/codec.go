package rf320

import "encoding/hex"

// 入站结构化校验与分发。
// 结构化合法 = 帧头为 Marker 且头部足够长，能提取类型前缀；
// 仅两种固定回显帧（ab01 握手回显 / ab02 命令回显）做校验和比对，
// 变长状态报文的尾字节语义未被完整逆向，按不透明字节处理，不参与校验。

// Dispatch 按十六进制头前缀分类报文类型：先试三字节前缀，再退两字节。
// 表内每个优先级至多一个命中，首个命中即为结果；未命中返回 KindUnknown。
func Dispatch(pkt []byte) MessageKind {
	if len(pkt) >= 3 {
		if spec, ok := prefix3[hex.EncodeToString(pkt[:3])]; ok {
			return spec.kind
		}
	}
	if len(pkt) >= 2 {
		if spec, ok := prefix2[hex.EncodeToString(pkt[:2])]; ok {
			return spec.kind
		}
	}
	return KindUnknown
}

// TryDecodeHeader 入站字节序列的首轮结构化校验。
// 返回 (类型, 是否结构化合法)：
//   - 长度不足2或首字节非 Marker：(KindUnknown, false)，静默丢弃
//   - 命令回显帧（ab02，5字节）：重算校验和，失配视为损坏帧 -> false
//   - 握手回显帧（ab01，4字节）：与固定字面量比对
//   - 其余状态报文：命中前缀且达到该类型最小长度 -> true；
//     命中前缀但长度不足 -> (类型, false)，不进入字段解码
//   - 未命中前缀：(KindUnknown, true)，作为 Unknown 事件继续上抛
func TryDecodeHeader(pkt []byte) (MessageKind, bool) {
	if len(pkt) < 2 || pkt[0] != Marker {
		return KindUnknown, false
	}

	switch pkt[1] {
	case HandshakeLenCode:
		if len(pkt) != len(handshakeFrame) {
			return KindStatusShort, false
		}
		for i, b := range handshakeFrame {
			if pkt[i] != b {
				return KindStatusShort, false
			}
		}
		return KindStatusShort, true
	case FrameLenCode:
		if len(pkt) != 5 {
			return KindStatusShort, false
		}
		var sum byte
		for _, b := range pkt[:4] {
			sum += b
		}
		if sum != pkt[4] {
			return KindStatusShort, false
		}
		return KindStatusShort, true
	}

	kind := Dispatch(pkt)
	if kind == KindUnknown {
		return KindUnknown, true
	}
	if len(pkt) < kind.MinLen() {
		return kind, false
	}
	return kind, true
}
