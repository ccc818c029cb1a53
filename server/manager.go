package server

import (
	"encoding/json"
	"errors"
	"sync"

	"rovernet/agent"
	"rovernet/journal"
	"rovernet/protocol"
)

var ErrNotConnected = errors.New("address not connected")

// Journal 可选的消息日志
type Journal interface {
	Write(e journal.Entry) error
}

// ConnManager 管理指挥方地址 → 连接；同一地址后连接者覆盖先连接者
type ConnManager struct {
	mu      sync.RWMutex
	conns   map[string]*ClientConn
	journal Journal
}

func NewConnManager(j Journal) *ConnManager {
	return &ConnManager{conns: make(map[string]*ClientConn), journal: j}
}

// Register 绑定地址与连接，返回被替换的旧连接（可能为 nil）
func (m *ConnManager) Register(address string, c *ClientConn) *ClientConn {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.conns[address]
	m.conns[address] = c
	return old
}

// Unregister 仅当地址仍绑定在 c 上时移除
func (m *ConnManager) Unregister(address string, c *ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.conns[address]; ok && cur == c {
		delete(m.conns, address)
	}
}

func (m *ConnManager) Get(address string) (*ClientConn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conns[address]
	return c, ok
}

func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Send 以 from 的身份向地址 to 发送状态消息；地址不在线时返回 ErrNotConnected（消息丢弃）
func (m *ConnManager) Send(from, to, body string) error {
	env := protocol.NewStatus(from, to, body)
	if m.journal != nil {
		if err := m.journal.Write(journal.Entry{Kind: journal.KindStatus, ID: env.ID, From: from, To: to, Body: body}); err != nil {
			Log.Warnf("journal write failed: %v", err)
		}
	}
	c, ok := m.Get(to)
	if !ok {
		return ErrNotConnected
	}
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if !c.Enqueue(b) {
		return errors.New("send queue full")
	}
	return nil
}

// SenderFor 绑定发送者身份，供实体使用
func (m *ConnManager) SenderFor(from string) agent.Sender {
	return &BoundSender{m: m, from: from}
}

// BoundSender 实现 agent.Sender
type BoundSender struct {
	m    *ConnManager
	from string
}

func (s *BoundSender) Send(to, body string) error { return s.m.Send(s.from, to, body) }
