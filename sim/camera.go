package sim

import (
	"errors"
	"fmt"
	"time"

	"rovernet/agent"
	"rovernet/codec"
)

var (
	ErrNoCamera = errors.New("no camera at index")
	ErrBadAxis  = errors.New("axis must be 0, 1 or 2")
)

// Camera 相机状态。Offset 为相对实体的位置，Rotation 为各轴角度（度）
type Camera struct {
	FOV      float64
	Offset   codec.Vec3
	Rotation codec.Vec3

	armed    bool
	timer    time.Duration
	captures int
}

func (c *Camera) SetFOV(fov float64) { c.FOV = fov }

// Move 沿轴平移；轴取值只能是 0/1/2
func (c *Camera) Move(axis int, delta float64) error {
	switch axis {
	case 0:
		c.Offset.X += delta
	case 1:
		c.Offset.Y += delta
	case 2:
		c.Offset.Z += delta
	default:
		return fmt.Errorf("move axis %d: %w", axis, ErrBadAxis)
	}
	return nil
}

// Rotate 设置指定轴的绝对角度
func (c *Camera) Rotate(axis int, degrees float64) error {
	switch axis {
	case 0:
		c.Rotation.X = degrees
	case 1:
		c.Rotation.Y = degrees
	case 2:
		c.Rotation.Z = degrees
	default:
		return fmt.Errorf("rotate axis %d: %w", axis, ErrBadAxis)
	}
	return nil
}

// SetCaptureTimer 重新设置拍照计时器，负数按 0 处理（下一帧拍照）
func (c *Camera) SetCaptureTimer(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.timer = d
	c.armed = true
}

func (c *Camera) Armed() bool { return c.armed }
func (c *Camera) Captures() int { return c.captures }

// tick 计时器到期返回 true
func (c *Camera) tick(dt time.Duration) bool {
	if !c.armed {
		return false
	}
	c.timer -= dt
	if c.timer > 0 {
		return false
	}
	c.armed = false
	c.captures++
	return true
}

// Rig 实体的相机组
type Rig struct {
	cams      []*Camera
	onCapture func(index int)
}

// NewRig 创建 n 个相机，初始视场角为 fov
func NewRig(n int, fov float64) *Rig {
	r := &Rig{cams: make([]*Camera, n)}
	for i := range r.cams {
		r.cams[i] = &Camera{FOV: fov}
	}
	return r
}

// OnCapture 计时器到期回调（在 Tick 协程上执行）
func (r *Rig) OnCapture(fn func(index int)) { r.onCapture = fn }

// Camera 越界时返回 ErrNoCamera
func (r *Rig) Camera(index int) (agent.Camera, error) {
	cam, ok := r.Get(index)
	if !ok {
		return nil, fmt.Errorf("camera %d of %d: %w", index, r.Len(), ErrNoCamera)
	}
	return cam, nil
}

func (r *Rig) Get(index int) (*Camera, bool) {
	if index < 0 || index >= len(r.cams) {
		return nil, false
	}
	return r.cams[index], true
}

func (r *Rig) Len() int { return len(r.cams) }

// Tick 推进所有相机的拍照计时器
func (r *Rig) Tick(dt time.Duration) {
	for i, c := range r.cams {
		if c.tick(dt) && r.onCapture != nil {
			r.onCapture(i)
		}
	}
}
