package server

import (
	"rovernet/agent"
	"rovernet/codec"
	"rovernet/sim"
)

// AgentSpec 生成实体所需的参数（管理接口与名册恢复共用）
type AgentSpec struct {
	Name     string     `json:"name"`
	Owner    string     `json:"owner"`
	Position [3]float64 `json:"position"`
}

// CameraState 管理接口输出的相机状态
type CameraState struct {
	FOV      float64    `json:"fov"`
	Offset   codec.Vec3 `json:"offset"`
	Rotation codec.Vec3 `json:"rotation"`
	Armed    bool       `json:"armed"`
	Captures int        `json:"captures"`
}

// AgentState 管理接口输出的实体快照
type AgentState struct {
	Name     string        `json:"name"`
	Owner    string        `json:"owner"`
	Position codec.Vec3    `json:"position"`
	Target   *codec.Vec3   `json:"target,omitempty"`
	Arrival  string        `json:"arrival"`
	Color    codec.Color   `json:"color"`
	Cameras  []CameraState `json:"cameras"`
}

// slot 世界中的一个实体及其拥有的子组件
type slot struct {
	agent      *agent.Agent
	nav        *sim.Navigator
	rig        *sim.Rig
	mesh       *sim.Mesh
	unregister func()
}

func (s *slot) state() AgentState {
	st := AgentState{
		Name:     s.agent.Name(),
		Owner:    s.agent.Owner(),
		Position: s.agent.Position(),
		Arrival:  s.agent.ArrivalState().String(),
		Color:    s.mesh.Color(),
		Cameras:  make([]CameraState, 0, s.rig.Len()),
	}
	if tgt, ok := s.nav.Target(); ok {
		st.Target = &tgt
	}
	for i := 0; i < s.rig.Len(); i++ {
		c, _ := s.rig.Get(i)
		st.Cameras = append(st.Cameras, CameraState{
			FOV:      c.FOV,
			Offset:   c.Offset,
			Rotation: c.Rotation,
			Armed:    c.Armed(),
			Captures: c.Captures(),
		})
	}
	return st
}
