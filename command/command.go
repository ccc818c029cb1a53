// Package command 定义命令的线上格式与强类型命令集合。
//
// 线上格式为 Message{commandName, data}，data 为按位置解释的字符串 token。
// Decoder 在传输边界一次性把 Message 解码为 Command 的某个具体变体，
// 之后的解释器只做类型匹配，不再接触原始文本。
package command

import "rovernet/codec"

// 规范命令名
const (
	NameMoveTo       = "move-to-target"
	NameChangeColor  = "change-color"
	NameCameraFOV    = "camera-fov"
	NameCameraMove   = "camera-move"
	NameCameraRotate = "camera-rotate"
	NameTakeImage    = "take-image"
)

// Message 传输层反序列化后的原始命令
type Message struct {
	CommandName string   `json:"commandName"`
	Data        []string `json:"data"`
}

// Command 封闭的命令集合，只有本包内的类型可以实现
type Command interface {
	Name() string
	isCommand()
}

// MoveTo 设置导航目标
type MoveTo struct {
	Target codec.Vec3
}

// ChangeColor 修改网格颜色
type ChangeColor struct {
	Color codec.Color
}

// CameraFOV 设置指定相机的视场角
type CameraFOV struct {
	Camera int
	FOV    float64
}

// CameraMove 沿局部轴平移相机
type CameraMove struct {
	Camera int
	Axis   int
	Delta  float64
}

// CameraRotate 绕局部轴旋转相机（角度在应用前裁剪到 [0,360]）
type CameraRotate struct {
	Camera  int
	Axis    int
	Degrees float64
}

// TakeImage 为相机设置拍照计时器
type TakeImage struct {
	Camera       int
	DelaySeconds float64
}

func (MoveTo) Name() string { return NameMoveTo }
func (ChangeColor) Name() string { return NameChangeColor }
func (CameraFOV) Name() string { return NameCameraFOV }
func (CameraMove) Name() string { return NameCameraMove }
func (CameraRotate) Name() string { return NameCameraRotate }
func (TakeImage) Name() string { return NameTakeImage }

func (MoveTo) isCommand() {}
func (ChangeColor) isCommand() {}
func (CameraFOV) isCommand() {}
func (CameraMove) isCommand() {}
func (CameraRotate) isCommand() {}
func (TakeImage) isCommand() {}
