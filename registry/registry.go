// Package registry 维护实体名到命令接收者的映射。
package registry

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"rovernet/command"
)

// Receiver 可以接收命令的实体
type Receiver interface {
	HandleCommand(cmd command.Command, sender string) error
}

var ErrEmptyName = errors.New("registry: empty name")

// Normalize 名称统一去空白并转小写
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type entry struct {
	receiver Receiver
	gen      uint64
}

// Registry 名称 → 接收者。只持有引用，不负责接收者的生命周期。
// 注册与查找可能来自不同协程（启动期注册与命令到达并发），用读写锁保护。
type Registry struct {
	mu        sync.RWMutex
	receivers map[string]entry
	nextGen   uint64
}

func New() *Registry {
	return &Registry{receivers: make(map[string]entry)}
}

// Register 注册接收者，同名覆盖（后写者胜）。
// 返回的 unregister 只会移除本次注册的条目：若该名称已被重新注册则不做任何事。
func (r *Registry) Register(name string, rc Receiver) (unregister func(), err error) {
	key := Normalize(name)
	if key == "" {
		return nil, ErrEmptyName
	}
	if rc == nil {
		return nil, errors.New("registry: nil receiver")
	}
	r.mu.Lock()
	r.nextGen++
	gen := r.nextGen
	r.receivers[key] = entry{receiver: rc, gen: gen}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if cur, ok := r.receivers[key]; ok && cur.gen == gen {
				delete(r.receivers, key)
			}
		})
	}, nil
}

// Lookup 查找接收者，不存在时返回 false
func (r *Registry) Lookup(name string) (Receiver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.receivers[Normalize(name)]
	if !ok {
		return nil, false
	}
	return e.receiver, true
}

// Unregister 无条件移除名称对应的条目
func (r *Registry) Unregister(name string) bool {
	key := Normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.receivers[key]; !ok {
		return false
	}
	delete(r.receivers, key)
	return true
}

// Names 已注册的名称（排序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.receivers))
	for k := range r.receivers {
		names = append(names, k)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.receivers)
}
