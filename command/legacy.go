package command

import "rovernet/codec"

// 旧协议有两套词表：moveTo/color 用单个打包 token（["1,0,2"]），
// move_agent/change_color 用固定长度数组（["1","0","2"]）。相机命令只有命名差异。
// 编码由命令名和参数个数共同决定，适配器据此改写成规范格式。

type legacyRule struct {
	canonical string
	arity     int // 数组格式的固定长度，0 表示没有数组格式
}

var legacyRules = map[string]legacyRule{
	"moveTo":       {canonical: NameMoveTo, arity: 3},
	"move_agent":   {canonical: NameMoveTo, arity: 3},
	"color":        {canonical: NameChangeColor, arity: 4},
	"change_color": {canonical: NameChangeColor, arity: 4},
	"cameraFov":    {canonical: NameCameraFOV},
	"cameraMove":   {canonical: NameCameraMove},
	"cameraRotate": {canonical: NameCameraRotate},
	"image":        {canonical: NameTakeImage},
}

// AdaptLegacy 改写旧协议消息；规范消息与未知消息原样返回
func AdaptLegacy(msg Message) Message {
	rule, ok := legacyRules[msg.CommandName]
	if !ok {
		return msg
	}
	out := Message{CommandName: rule.canonical, Data: msg.Data}
	if rule.arity > 0 && len(msg.Data) >= rule.arity {
		out.Data = []string{codec.PackTokens(msg.Data[:rule.arity])}
	}
	return out
}

// IsLegacyName 命令名是否属于旧词表
func IsLegacyName(name string) bool {
	_, ok := legacyRules[name]
	return ok
}
