package command

import (
	"errors"
	"fmt"

	"rovernet/codec"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformed      = errors.New("malformed arguments")
)

type decodeFunc func(data []string) (Command, bool)

// canonical 规范协议：每个命令名对应唯一编码
var canonical = map[string]decodeFunc{
	NameMoveTo:       decodeMoveTo,
	NameChangeColor:  decodeChangeColor,
	NameCameraFOV:    decodeCameraFOV,
	NameCameraMove:   decodeCameraMove,
	NameCameraRotate: decodeCameraRotate,
	NameTakeImage:    decodeTakeImage,
}

// Decoder 把 Message 解码为 Command；acceptLegacy 为 true 时先经过旧协议适配
type Decoder struct {
	acceptLegacy bool
}

func NewDecoder(acceptLegacy bool) *Decoder {
	return &Decoder{acceptLegacy: acceptLegacy}
}

// AcceptsLegacy 是否接受旧命令词表
func (d *Decoder) AcceptsLegacy() bool { return d.acceptLegacy }

// Decode 未知命令返回 ErrUnknownCommand，参数缺失或非数值返回 ErrMalformed
func (d *Decoder) Decode(msg Message) (Command, error) {
	if d.acceptLegacy {
		msg = AdaptLegacy(msg)
	}
	fn, ok := canonical[msg.CommandName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, msg.CommandName)
	}
	cmd, ok := fn(msg.Data)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrMalformed, msg.CommandName, msg.Data)
	}
	return cmd, nil
}

func decodeMoveTo(data []string) (Command, bool) {
	if len(data) < 1 {
		return nil, false
	}
	v, ok := codec.ParseVector3(data[0])
	if !ok {
		return nil, false
	}
	return MoveTo{Target: v}, true
}

func decodeChangeColor(data []string) (Command, bool) {
	if len(data) < 1 {
		return nil, false
	}
	c, ok := codec.ParseColor(data[0])
	if !ok {
		return nil, false
	}
	return ChangeColor{Color: c}, true
}

func decodeCameraFOV(data []string) (Command, bool) {
	if len(data) < 2 {
		return nil, false
	}
	idx, ok1 := codec.ParseInt(data[0])
	fov, ok2 := codec.ParseFloat(data[1])
	if !ok1 || !ok2 {
		return nil, false
	}
	return CameraFOV{Camera: idx, FOV: fov}, true
}

// cameraAxisArgs camera-move / camera-rotate 共用的 (index:int, axis:int, value:float)
func cameraAxisArgs(data []string) (idx, axis int, value float64, ok bool) {
	if len(data) < 3 {
		return 0, 0, 0, false
	}
	idx, ok1 := codec.ParseInt(data[0])
	axis, ok2 := codec.ParseInt(data[1])
	value, ok3 := codec.ParseFloat(data[2])
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, false
	}
	return idx, axis, value, true
}

func decodeCameraMove(data []string) (Command, bool) {
	idx, axis, delta, ok := cameraAxisArgs(data)
	if !ok {
		return nil, false
	}
	return CameraMove{Camera: idx, Axis: axis, Delta: delta}, true
}

func decodeCameraRotate(data []string) (Command, bool) {
	idx, axis, deg, ok := cameraAxisArgs(data)
	if !ok {
		return nil, false
	}
	return CameraRotate{Camera: idx, Axis: axis, Degrees: deg}, true
}

func decodeTakeImage(data []string) (Command, bool) {
	if len(data) < 2 {
		return nil, false
	}
	idx, ok1 := codec.ParseInt(data[0])
	delay, ok2 := codec.ParseFloat(data[1])
	if !ok1 || !ok2 {
		return nil, false
	}
	return TakeImage{Camera: idx, DelaySeconds: delay}, true
}
