package server

import "rovernet/command"

// Inbound 一条待路由的入站命令，由传输层读协程提交、在 Tick 中处理
type Inbound struct {
	ID     string
	Target string
	Msg    command.Message
	Sender string // 发送方（指挥方）地址
}
