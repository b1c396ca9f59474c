package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 桥接业务指标
type AppMetrics struct {
	NotifyBytes         prometheus.Counter     // 收到的通知字节数
	ParseTotal          *prometheus.CounterVec // labels: result=ok|rejected
	RouteTotal          *prometheus.CounterVec // labels: kind
	UnknownTotal        prometheus.Counter     // 未识别/降级报文计数
	ReassemblyCompleted prometheus.Counter     // 重组完成次数
	ReassemblyReset     prometheus.Counter     // 重组被首片重启、半成品丢弃次数
	CommandTotal        *prometheus.CounterVec // labels: outcome=sent|not_ready|write_failed
	StateGauge          prometheus.Gauge       // 连接状态机当前状态（序数值）
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		NotifyBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ble_notify_bytes_total",
			Help: "Total bytes received via BLE notifications.",
		}),
		ParseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rf320_parse_total",
			Help: "Inbound packet structural validation attempts.",
		}, []string{"result"}),
		RouteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rf320_route_total",
			Help: "Routed packets by message kind.",
		}, []string{"kind"}),
		UnknownTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rf320_unknown_total",
			Help: "Packets emitted as unknown events.",
		}),
		ReassemblyCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rf320_reassembly_completed_total",
			Help: "Multi-part reassemblies completed.",
		}),
		ReassemblyReset: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rf320_reassembly_reset_total",
			Help: "Multi-part reassemblies restarted with partial data discarded.",
		}),
		CommandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rf320_command_total",
			Help: "Outbound commands by outcome.",
		}, []string{"outcome"}),
		StateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rf320_connection_state",
			Help: "Connection state machine state (ordinal).",
		}),
	}
	reg.MustRegister(m.NotifyBytes, m.ParseTotal, m.RouteTotal, m.UnknownTotal,
		m.ReassemblyCompleted, m.ReassemblyReset, m.CommandTotal, m.StateGauge)
	return m
}
