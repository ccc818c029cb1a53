package agent

import (
	"time"

	"rovernet/codec"
)

// Navigator 导航组件：接受目标点，报告是否到达以及下一个路径点
type Navigator interface {
	SetTarget(target codec.Vec3)
	Finished(pos codec.Vec3) bool
	NextWaypoint(pos codec.Vec3) codec.Vec3
}

// Camera 单个相机的能力句柄
type Camera interface {
	SetFOV(fov float64)
	Move(axis int, delta float64) error
	Rotate(axis int, degrees float64) error
	SetCaptureTimer(d time.Duration)
}

// CameraRig 按索引取相机，越界时返回错误而不是 panic
type CameraRig interface {
	Camera(index int) (Camera, error)
}

// Mesh 外观组件
type Mesh interface {
	SetColor(c codec.Color)
}

// Sender 传输层提供的发送原语
type Sender interface {
	Send(to, body string) error
}

// Parts 实体拥有的子组件
type Parts struct {
	Nav     Navigator
	Cameras CameraRig
	Mesh    Mesh
}

// ticker 需要随 Tick 推进的子组件（如相机的拍照计时器）
type ticker interface {
	Tick(dt time.Duration)
}
