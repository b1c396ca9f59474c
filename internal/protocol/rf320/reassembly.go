package rf320

import "strings"

// 多片段重组缓冲。设备信息这类 ASCII 载荷会拆成一串共享逻辑流键的报文，
// 逐片累积，观察到末片标记时一次性产出完整文本。
// 状态机（每流键）：Empty -> Accumulating -> Complete。
// Complete 即发射并销毁条目；引擎不保留历史。

// terminalMarker 末片尾字节标记
const terminalMarker byte = 0xFF

// streamKeyDeviceInfo 设备信息流键：首片（ab10）与续片（ab11）共用
const streamKeyDeviceInfo = "device_info"

// containsTerminalText 末片的启发式判定：末片标记不总是可靠，
// 实测设备信息文本以支持邮箱/网址收尾，含 ".com"/".net" 即视为末片
func containsTerminalText(text string) bool {
	return strings.Contains(text, ".com") || strings.Contains(text, ".net")
}

type reassemblyEntry struct {
	parts strings.Builder
}

// Assembler 重组缓冲。仅在入站处理路径上被触碰，
// 并发保护由持有它的 Engine 负责。
type Assembler struct {
	entries map[string]*reassemblyEntry
}

// NewAssembler 创建空重组缓冲
func NewAssembler() *Assembler {
	return &Assembler{entries: make(map[string]*reassemblyEntry)}
}

// Push 送入一个片段。
// first 标记首片：若同键条目仍在累积中，旧的部分数据被静默丢弃重新开始
// （设备重新触发时总是从头重发，丢弃半成品是可接受的取舍）。
// terminal 标记末片：返回 (完整文本, true) 并销毁条目。
func (a *Assembler) Push(key, fragment string, first, terminal bool) (string, bool) {
	e := a.entries[key]
	if e == nil || first {
		e = &reassemblyEntry{}
		a.entries[key] = e
	}
	e.parts.WriteString(fragment)
	if !terminal {
		return "", false
	}
	delete(a.entries, key)
	return e.parts.String(), true
}

// Pending 返回指定流键是否有未完成条目（测试观察点）
func (a *Assembler) Pending(key string) bool {
	_, ok := a.entries[key]
	return ok
}

// Reset 丢弃全部未完成条目。连接关闭时调用，半成品直接放弃，无需回滚。
func (a *Assembler) Reset() {
	a.entries = make(map[string]*reassemblyEntry)
}
