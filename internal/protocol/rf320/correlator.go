package rf320

// 双包配对器。频率数据以两个报文成对到达：index 半包（索引+模式）
// 先到并暂存，display 半包（显示文本）到达时合并成一个事件。
// 槽位只有一个：新的 index 半包会静默覆盖未被消费的旧值。
// 协议没有序号能把某个 index 对应到某个 display，这是协议既有的歧义，
// 不在此处做更强的猜测性关联。

// Correlator 单槽配对器。并发保护由持有它的 Engine 负责。
type Correlator struct {
	pending *indexHalf
}

// NewCorrelator 创建空配对器
func NewCorrelator() *Correlator {
	return &Correlator{}
}

// PutIndex 暂存 index 半包，覆盖旧值
func (c *Correlator) PutIndex(h indexHalf) {
	c.pending = &h
}

// TakeIndex 取走暂存的 index 半包并清空槽位。
// 没有暂存值时返回 false；display 半包独立发射，index 元数据只是可选增强。
func (c *Correlator) TakeIndex() (indexHalf, bool) {
	if c.pending == nil {
		return indexHalf{}, false
	}
	h := *c.pending
	c.pending = nil
	return h, true
}

// Reset 清空槽位
func (c *Correlator) Reset() {
	c.pending = nil
}
