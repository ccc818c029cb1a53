package server

import (
	"sync/atomic"

	"rovernet/router"
)

// Metrics 记录运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount      int64 // 统计的 Tick 次数
	Delivered      int64 // 成功投递的命令
	UnknownTarget  int64 // 目标不存在而丢弃
	UnknownCommand int64 // 未知命令
	Malformed      int64 // 参数错误而丢弃
	HandlerFailed  int64 // 处理器返回错误或 panic
	Rejected       int64 // 信封校验失败
	Legacy         int64 // 旧协议命令（经适配器改写）
	InputsDropped  int64 // 因输入通道满被丢弃
	Arrivals       int64 // 发送的到达通知
	Captures       int64 // 相机拍照次数
	TotalTickNs    int64 // Tick 累计耗时（纳秒）
}

func (m *Metrics) IncRejected() { atomic.AddInt64(&m.Rejected, 1) }
func (m *Metrics) IncLegacy() { atomic.AddInt64(&m.Legacy, 1) }
func (m *Metrics) IncInputsDropped() { atomic.AddInt64(&m.InputsDropped, 1) }
func (m *Metrics) IncArrivals() { atomic.AddInt64(&m.Arrivals, 1) }
func (m *Metrics) IncCaptures() { atomic.AddInt64(&m.Captures, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Record 按路由结果计数
func (m *Metrics) Record(out router.Outcome) {
	switch out {
	case router.Delivered:
		atomic.AddInt64(&m.Delivered, 1)
	case router.UnknownTarget:
		atomic.AddInt64(&m.UnknownTarget, 1)
	case router.UnknownCommand:
		atomic.AddInt64(&m.UnknownCommand, 1)
	case router.Malformed:
		atomic.AddInt64(&m.Malformed, 1)
	case router.Failed:
		atomic.AddInt64(&m.HandlerFailed, 1)
	}
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"delivered":       atomic.LoadInt64(&m.Delivered),
		"unknown_target":  atomic.LoadInt64(&m.UnknownTarget),
		"unknown_command": atomic.LoadInt64(&m.UnknownCommand),
		"malformed":       atomic.LoadInt64(&m.Malformed),
		"handler_failed":  atomic.LoadInt64(&m.HandlerFailed),
		"rejected":        atomic.LoadInt64(&m.Rejected),
		"legacy":          atomic.LoadInt64(&m.Legacy),
		"inputs_dropped":  atomic.LoadInt64(&m.InputsDropped),
		"arrivals":        atomic.LoadInt64(&m.Arrivals),
		"captures":        atomic.LoadInt64(&m.Captures),
		"avg_tick_ms":     avgMs,
	}
}
