// Package router 把入站命令投递给注册表中的接收者。
// 任何失败（目标不存在、命令未知、参数错误、处理器出错或 panic）都只影响当前这条命令。
package router

import (
	"errors"

	"go.uber.org/zap"

	"rovernet/command"
	"rovernet/registry"
)

// Outcome 单条命令的路由结果
type Outcome int

const (
	Delivered Outcome = iota
	UnknownTarget
	UnknownCommand
	Malformed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case UnknownTarget:
		return "unknown_target"
	case UnknownCommand:
		return "unknown_command"
	case Malformed:
		return "malformed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Router struct {
	reg *registry.Registry
	dec *command.Decoder
	log *zap.SugaredLogger
}

func New(reg *registry.Registry, dec *command.Decoder, log *zap.SugaredLogger) *Router {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if dec == nil {
		dec = command.NewDecoder(false)
	}
	return &Router{reg: reg, dec: dec, log: log}
}

// Route 投递已解码的命令，不检查命令内容
func (r *Router) Route(target string, cmd command.Command, sender string) Outcome {
	rc, ok := r.reg.Lookup(target)
	if !ok {
		r.log.Warnw("no receiver for target, message dropped", "target", target, "sender", sender)
		return UnknownTarget
	}
	if cmd == nil {
		return Malformed
	}
	return r.dispatch(rc, target, cmd, sender)
}

// Deliver 先解码原始消息再投递。参数错误静默丢弃（仅 debug 日志）。
func (r *Router) Deliver(target string, msg command.Message, sender string) Outcome {
	rc, ok := r.reg.Lookup(target)
	if !ok {
		r.log.Warnw("no receiver for target, message dropped", "target", target, "sender", sender, "command", msg.CommandName)
		return UnknownTarget
	}
	cmd, err := r.dec.Decode(msg)
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		r.log.Warnw("unrecognized command", "target", target, "command", msg.CommandName, "sender", sender)
		return UnknownCommand
	case err != nil:
		r.log.Debugw("malformed command dropped", "target", target, "err", err)
		return Malformed
	}
	return r.dispatch(rc, target, cmd, sender)
}

func (r *Router) dispatch(rc registry.Receiver, target string, cmd command.Command, sender string) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Errorw("receiver panicked", "target", target, "command", cmd.Name(), "panic", p)
			out = Failed
		}
	}()
	if err := rc.HandleCommand(cmd, sender); err != nil {
		r.log.Warnw("command failed", "target", target, "command", cmd.Name(), "err", err)
		return Failed
	}
	return Delivered
}
