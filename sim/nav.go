// Package sim 提供实体子组件的最小运动学实现（导航、相机组、网格外观）。
// 渲染与物理不在这里；这些实现只保存状态，让服务在没有引擎的情况下也能完整运行。
package sim

import "rovernet/codec"

// Navigator 直线导航：唯一路径点就是目标点
type Navigator struct {
	target    codec.Vec3
	hasTarget bool
	tolerance float64
}

func NewNavigator(tolerance float64) *Navigator {
	if tolerance <= 0 {
		tolerance = 0.05
	}
	return &Navigator{tolerance: tolerance}
}

func (n *Navigator) SetTarget(target codec.Vec3) {
	n.target = target
	n.hasTarget = true
}

// Finished 没有目标时也视为完成
func (n *Navigator) Finished(pos codec.Vec3) bool {
	return !n.hasTarget || pos.Dist(n.target) <= n.tolerance
}

func (n *Navigator) NextWaypoint(pos codec.Vec3) codec.Vec3 {
	if !n.hasTarget {
		return pos
	}
	return n.target
}

func (n *Navigator) Target() (codec.Vec3, bool) { return n.target, n.hasTarget }
