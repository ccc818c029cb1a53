package server

import (
	"context"
	"time"
)

// TickInterval 固定步长，与渲染无关
func (w *World) TickInterval() time.Duration {
	return time.Second / time.Duration(w.cfg.TickRateHz)
}

// Run 启动 Tick 循环（单线程推进世界），ctx 取消时返回
func (w *World) Run(ctx context.Context) {
	interval := w.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 核心循环：处理输入 → 更新世界
			start := time.Now()
			w.Step(interval)
			w.metrics.AddTick(time.Since(start).Nanoseconds())
		}
	}
}
