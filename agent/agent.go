// Package agent 实现可控实体：命令解释器与到达通知状态机。
//
// 所有方法都假定在同一个逻辑线程（世界 Tick 协程）上调用，内部不加锁。
package agent

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"rovernet/codec"
	"rovernet/command"
	"rovernet/registry"
)

var ErrNoComponent = errors.New("agent: component not attached")

var _ registry.Receiver = (*Agent)(nil)

// Config 实体初始化参数
type Config struct {
	Name      string
	Owner     string // 指挥方地址，状态消息的目的地
	Position  codec.Vec3
	Speed     float64 // 单位/秒
	Frame     codec.Frame
	Delimiter string
}

// Agent 可控实体
type Agent struct {
	name  string
	owner string
	pos   codec.Vec3
	speed float64
	frame codec.Frame
	delim string

	parts   Parts
	out     Sender
	arrival arrivalTracker

	log *zap.SugaredLogger
}

// New 名称在这里统一转小写；注册由外部生命周期管理者在 New 之后完成
func New(cfg Config, parts Parts, out Sender, log *zap.SugaredLogger) (*Agent, error) {
	name := registry.Normalize(cfg.Name)
	if name == "" {
		return nil, registry.ErrEmptyName
	}
	if cfg.Owner == "" {
		return nil, fmt.Errorf("agent %s: empty owner address", name)
	}
	if parts.Nav == nil {
		return nil, fmt.Errorf("agent %s: navigator: %w", name, ErrNoComponent)
	}
	if out == nil {
		return nil, fmt.Errorf("agent %s: nil sender", name)
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Agent{
		name:  name,
		owner: cfg.Owner,
		pos:   cfg.Position,
		speed: cfg.Speed,
		frame: cfg.Frame,
		delim: cfg.Delimiter,
		parts: parts,
		out:   out,
		log:   log.With("agent", name),
	}, nil
}

func (a *Agent) Name() string { return a.name }
func (a *Agent) Owner() string { return a.owner }
func (a *Agent) Position() codec.Vec3 { return a.pos }
func (a *Agent) ArrivalState() ArrivalState { return a.arrival.state }
func (a *Agent) ArrivalNotified() bool { return a.arrival.notified() }

// Announce 初始化后向指挥方报告初始位置，不影响到达状态
func (a *Agent) Announce() error {
	return a.out.Send(a.owner, a.positionBody())
}

// HandleCommand 命令解释器；副作用只作用在自身拥有的子组件上
func (a *Agent) HandleCommand(cmd command.Command, sender string) error {
	switch c := cmd.(type) {
	case command.MoveTo:
		a.parts.Nav.SetTarget(c.Target)
		a.arrival.retarget()
		a.log.Debugw("new navigation target", "target", c.Target, "sender", sender)
		return nil

	case command.ChangeColor:
		if a.parts.Mesh == nil {
			return fmt.Errorf("mesh: %w", ErrNoComponent)
		}
		a.parts.Mesh.SetColor(c.Color)
		return nil

	case command.CameraFOV:
		cam, err := a.camera(c.Camera)
		if err != nil {
			return err
		}
		cam.SetFOV(c.FOV)
		return nil

	case command.CameraMove:
		cam, err := a.camera(c.Camera)
		if err != nil {
			return err
		}
		return cam.Move(c.Axis, c.Delta)

	case command.CameraRotate:
		cam, err := a.camera(c.Camera)
		if err != nil {
			return err
		}
		return cam.Rotate(c.Axis, ClampDegrees(c.Degrees))

	case command.TakeImage:
		cam, err := a.camera(c.Camera)
		if err != nil {
			return err
		}
		cam.SetCaptureTimer(DelayDuration(c.DelaySeconds))
		return nil

	default:
		a.log.Warnw("unrecognized command", "command", fmt.Sprintf("%T", cmd), "sender", sender)
		return nil
	}
}

// Tick 推进一帧：未到达则朝下一个路径点移动；到达且尚未通知则发送一次到达消息。
// 返回值表示本帧是否发送了到达通知。
func (a *Agent) Tick(dt time.Duration) bool {
	if t, ok := a.parts.Cameras.(ticker); ok {
		t.Tick(dt)
	}
	if a.parts.Nav.Finished(a.pos) {
		if !a.arrival.pending() {
			return false
		}
		a.notifyArrival()
		return true
	}
	a.step(dt)
	return false
}

func (a *Agent) step(dt time.Duration) {
	next := a.parts.Nav.NextWaypoint(a.pos)
	delta := next.Sub(a.pos)
	dist := delta.Len()
	if dist == 0 {
		return
	}
	maxStep := a.speed * dt.Seconds()
	if maxStep >= dist {
		a.pos = next
		return
	}
	a.pos = a.pos.Add(delta.Scale(maxStep / dist))
}

func (a *Agent) notifyArrival() {
	// 无论发送是否成功都标记为已通知：传输层不保证送达，保证的是“至多一次”
	if err := a.out.Send(a.owner, a.positionBody()); err != nil {
		a.log.Warnw("arrival message not sent", "owner", a.owner, "err", err)
	} else {
		a.log.Infow("destination reached", "owner", a.owner, "pos", a.pos)
	}
	a.arrival.markNotified()
}

func (a *Agent) positionBody() string {
	return codec.FormatVector3(a.frame.ToTransport(a.pos), a.delim)
}

func (a *Agent) camera(index int) (Camera, error) {
	if a.parts.Cameras == nil {
		return nil, fmt.Errorf("cameras: %w", ErrNoComponent)
	}
	return a.parts.Cameras.Camera(index)
}

// DelayDuration 秒数转 Duration，超出可表示范围时取最大值
func DelayDuration(seconds float64) time.Duration {
	if seconds >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}

// ClampDegrees 相机旋转角度裁剪到 [0,360]
func ClampDegrees(deg float64) float64 {
	return math.Max(0, math.Min(360, deg))
}
