package server

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"rovernet/agent"
	"rovernet/codec"
	"rovernet/command"
	"rovernet/config"
	"rovernet/journal"
	"rovernet/protocol"
	"rovernet/registry"
	"rovernet/router"
	"rovernet/sim"
	"rovernet/store"
)

// Outbox 为实体提供绑定了发送者身份的发送原语
type Outbox interface {
	SenderFor(from string) agent.Sender
}

// Recorder 名册与到达记录的持久化（store.Store）
type Recorder interface {
	SaveAgent(rec store.AgentRecord)
	DeleteAgent(name string)
	RecordArrival(a store.Arrival)
}

// WorldConfig 世界参数
type WorldConfig struct {
	TickRateHz int
	Agent      config.AgentConfig
	Outbound   config.OutboundConfig
}

// WorldDeps 世界依赖，Store 与 Journal 可为 nil
type WorldDeps struct {
	Registry *registry.Registry
	Router   *router.Router
	Outbox   Outbox
	Store    Recorder
	Journal  Journal
}

// World 权威状态维护在内存，单线程 Tick 推进。
// 传输层与管理接口只通过 inputChan / ctrlChan 与世界交互。
type World struct {
	cfg     WorldConfig
	reg     *registry.Registry
	router  *router.Router
	out     Outbox
	store   Recorder
	journal Journal

	slots     map[string]*slot
	inputChan chan Inbound
	ctrlChan  chan func()

	metrics *Metrics
	tickSeq atomic.Uint64
}

// NewWorld 创建世界，初始化数据结构
func NewWorld(cfg WorldConfig, deps WorldDeps) *World {
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 20
	}
	return &World{
		cfg:       cfg,
		reg:       deps.Registry,
		router:    deps.Router,
		out:       deps.Outbox,
		store:     deps.Store,
		journal:   deps.Journal,
		slots:     make(map[string]*slot),
		inputChan: make(chan Inbound, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		ctrlChan:  make(chan func(), 16),
		metrics:   &Metrics{},
	}
}

func (w *World) Metrics() *Metrics { return w.metrics }
func (w *World) TickSeq() uint64 { return w.tickSeq.Load() }

// Submit 入站命令（不立即执行），等下一次 Tick 处理；通道满时丢弃
func (w *World) Submit(in Inbound) bool {
	select {
	case w.inputChan <- in:
		return true
	default:
		w.metrics.IncInputsDropped()
		return false
	}
}

// Do 在 Tick 协程上执行 fn 并等待结果；世界未运行时会一直阻塞到 ctx 结束
func (w *World) Do(ctx context.Context, fn func(w *World) error) error {
	reply := make(chan error, 1)
	select {
	case w.ctrlChan <- func() { reply <- fn(w) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step 推进一帧：处理入站命令 → 更新实体
func (w *World) Step(dt time.Duration) {
	w.tickSeq.Add(1)
	w.ProcessInputs()
	w.UpdateWorld(dt)
}

// ProcessInputs 处理当前帧的所有控制请求与命令（非阻塞 drain）
func (w *World) ProcessInputs() {
	for {
		select {
		case fn := <-w.ctrlChan:
			fn()
		case in := <-w.inputChan:
			w.route(in)
		default:
			return
		}
	}
}

func (w *World) route(in Inbound) {
	if command.IsLegacyName(in.Msg.CommandName) {
		w.metrics.IncLegacy()
	}
	out := w.router.Deliver(in.Target, in.Msg, in.Sender)
	w.metrics.Record(out)
	if w.journal == nil {
		return
	}
	msg := in.Msg
	err := w.journal.Write(journal.Entry{
		Kind:    journal.KindCommand,
		ID:      in.ID,
		From:    in.Sender,
		To:      in.Target,
		Command: &msg,
		Outcome: out.String(),
	})
	if err != nil {
		Log.Warnf("journal write failed: %v", err)
	}
}

// UpdateWorld 按名称顺序推进每个实体，并处理到达事件
func (w *World) UpdateWorld(dt time.Duration) {
	for _, name := range w.names() {
		s := w.slots[name]
		if !s.agent.Tick(dt) {
			continue
		}
		w.metrics.IncArrivals()
		if w.store != nil {
			pos := s.agent.Position().Array()
			w.store.RecordArrival(store.Arrival{ID: protocol.NewID(), Agent: name, Owner: s.agent.Owner(), Position: pos})
			w.store.SaveAgent(store.AgentRecord{Name: name, Owner: s.agent.Owner(), Position: pos})
		}
	}
}

// Spawn 创建实体并注册。同名实体在新实体校验通过后才被替换。只能在 Tick 协程或 Run 之前调用。
// 顺序：命名 → 注册 → 向指挥方报告初始位置。
func (w *World) Spawn(spec AgentSpec) (*agent.Agent, error) {
	name := registry.Normalize(spec.Name)
	nav := sim.NewNavigator(w.cfg.Agent.ArrivalTolerance)
	rig := sim.NewRig(w.cfg.Agent.Cameras, w.cfg.Agent.FOV)
	mesh := sim.NewMesh()
	a, err := agent.New(agent.Config{
		Name:      name,
		Owner:     spec.Owner,
		Position:  codec.FromArray(spec.Position),
		Speed:     w.cfg.Agent.Speed,
		Frame:     codec.Frame{SwapYZ: w.cfg.Outbound.SwapYZ},
		Delimiter: w.cfg.Outbound.Delimiter,
	}, agent.Parts{Nav: nav, Cameras: rig, Mesh: mesh}, w.out.SenderFor(name), Log)
	if err != nil {
		return nil, fmt.Errorf("spawn: %w", err)
	}
	if old, ok := w.slots[name]; ok {
		old.unregister()
		delete(w.slots, name)
		Log.Warnf("agent %s replaced (owner %s -> %s)", name, old.agent.Owner(), spec.Owner)
	}
	rig.OnCapture(func(index int) {
		w.metrics.IncCaptures()
		Log.Infof("agent %s camera %d captured image", name, index)
	})

	unregister, err := w.reg.Register(a.Name(), a)
	if err != nil {
		return nil, fmt.Errorf("spawn: %w", err)
	}
	w.slots[a.Name()] = &slot{agent: a, nav: nav, rig: rig, mesh: mesh, unregister: unregister}
	if w.store != nil {
		w.store.SaveAgent(store.AgentRecord{Name: a.Name(), Owner: a.Owner(), Position: spec.Position})
	}
	if err := a.Announce(); err != nil {
		Log.Debugf("spawn announcement for %s not delivered: %v", a.Name(), err)
	}
	Log.Infof("agent spawned: %s owner=%s pos=%v", a.Name(), a.Owner(), spec.Position)
	return a, nil
}

// Despawn 注销并移除实体，之后发往该名称的命令按“目标不存在”处理
func (w *World) Despawn(name string) bool {
	key := registry.Normalize(name)
	s, ok := w.slots[key]
	if !ok {
		return false
	}
	s.unregister()
	delete(w.slots, key)
	if w.store != nil {
		w.store.DeleteAgent(key)
	}
	Log.Infof("agent despawned: %s", key)
	return true
}

// Agent 按名称取实体（Tick 协程内使用）
func (w *World) Agent(name string) (*agent.Agent, bool) {
	s, ok := w.slots[registry.Normalize(name)]
	if !ok {
		return nil, false
	}
	return s.agent, true
}

// Agents 所有实体的快照
func (w *World) Agents() []AgentState {
	out := make([]AgentState, 0, len(w.slots))
	for _, name := range w.names() {
		out = append(out, w.slots[name].state())
	}
	return out
}

func (w *World) names() []string {
	names := make([]string, 0, len(w.slots))
	for name := range w.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
