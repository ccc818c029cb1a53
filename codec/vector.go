package codec

import "math"

// Vec3 三维向量，引擎坐标系（Y 轴向上）
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }
func (v Vec3) Array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }
func FromArray(a [3]float64) Vec3 { return Vec3{a[0], a[1], a[2]} }

// Color RGBA 颜色，分量原样保存，不做 [0,1] 裁剪
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Frame 传输端的坐标轴约定
// SwapYZ 为 true 时对端使用 Z 轴向上（引擎为 Y 轴向上）
type Frame struct {
	SwapYZ bool
}

// ToTransport 引擎坐标 → 传输端坐标
func (f Frame) ToTransport(v Vec3) Vec3 {
	if f.SwapYZ {
		return Vec3{X: v.X, Y: v.Z, Z: v.Y}
	}
	return v
}

// FromTransport 传输端坐标 → 引擎坐标
func (f Frame) FromTransport(v Vec3) Vec3 {
	// 交换是自反的
	return f.ToTransport(v)
}
