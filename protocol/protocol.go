// Package protocol 定义 WebSocket 传输层上的消息信封。
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"rovernet/command"
)

// 信封类型
const (
	TypeCommand = "command"
	TypeStatus  = "status"
)

var ErrBadEnvelope = errors.New("bad envelope")

// Envelope 入站 command / 出站 status 共用
type Envelope struct {
	Type    string           `json:"type"`
	ID      string           `json:"id,omitempty"`
	From    string           `json:"from,omitempty"`
	To      string           `json:"to,omitempty"`
	Command *command.Message `json:"command,omitempty"`
	Body    string           `json:"body,omitempty"`
}

// DecodeCommand 解析并校验入站命令信封；缺字段的信封在这里被拒绝，不会进入路由
func DecodeCommand(b []byte) (Envelope, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if err := commandSchema.Validate(raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	return env, nil
}

// Data 命令参数，非命令信封返回 nil
func (e Envelope) Data() []string {
	if e.Command == nil {
		return nil
	}
	return e.Command.Data
}

// NewCommand 构造入站命令信封（控制端使用）
func NewCommand(to string, msg command.Message) Envelope {
	m := msg
	return Envelope{Type: TypeCommand, ID: NewID(), To: to, Command: &m}
}

// NewStatus 构造出站状态信封
func NewStatus(from, to, body string) Envelope {
	return Envelope{Type: TypeStatus, ID: NewID(), From: from, To: to, Body: body}
}

// DecodeStatus 控制端解析状态信封
func DecodeStatus(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.Type != TypeStatus {
		return Envelope{}, fmt.Errorf("%w: type %q", ErrBadEnvelope, env.Type)
	}
	return env, nil
}
