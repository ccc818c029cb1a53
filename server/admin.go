package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"rovernet/registry"
	"rovernet/store"
)

const adminTimeout = 2 * time.Second

// ArrivalLog 到达记录查询（store.Store）
type ArrivalLog interface {
	Arrivals(ctx context.Context, agent string, limit int) ([]store.Arrival, error)
}

// Admin 管理与监控接口；所有对世界的读写都经由 World.Do 在 Tick 协程执行
type Admin struct {
	world    *World
	conns    *ConnManager
	arrivals ArrivalLog
}

// NewAdmin arrivals 可为 nil（未启用持久化）
func NewAdmin(world *World, conns *ConnManager, arrivals ArrivalLog) *Admin {
	return &Admin{world: world, conns: conns, arrivals: arrivals}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAgents 实体管理
// GET    /admin/agents            列出实体
// POST   /admin/agents            生成实体，载荷为 AgentSpec
// DELETE /admin/agents?name=rover1 移除实体
func (a *Admin) HandleAgents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), adminTimeout)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		var states []AgentState
		err := a.world.Do(ctx, func(wd *World) error {
			states = wd.Agents()
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, states)
	case http.MethodPost:
		var spec AgentSpec
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		var state AgentState
		err := a.world.Do(ctx, func(wd *World) error {
			ag, err := wd.Spawn(spec)
			if err != nil {
				return err
			}
			state = wd.slots[ag.Name()].state()
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, state)
	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "missing name query", http.StatusBadRequest)
			return
		}
		var removed bool
		err := a.world.Do(ctx, func(wd *World) error {
			removed = wd.Despawn(name)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if !removed {
			http.Error(w, "agent not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleArrivals 查询某个实体的到达记录
// GET /admin/arrivals?name=rover1&limit=20
func (a *Admin) HandleArrivals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.arrivals == nil {
		http.Error(w, "persistence disabled", http.StatusNotImplemented)
		return
	}
	name := registry.Normalize(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "missing name query", http.StatusBadRequest)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	ctx, cancel := context.WithTimeout(r.Context(), adminTimeout)
	defer cancel()
	list, err := a.arrivals.Arrivals(ctx, name, limit)
	if err != nil {
		Log.Warnf("query arrivals for %s: %v", name, err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []store.Arrival{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleMetrics 输出运行指标
// GET /metrics
func (a *Admin) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"tick":        a.world.TickSeq(),
		"controllers": a.conns.Count(),
		"receivers":   a.world.reg.Len(),
		"metrics":     a.world.metrics.Snapshot(),
	}
	writeJSON(w, http.StatusOK, payload)
}

// NewMux 组装 HTTP 路由
func NewMux(t *Transport, a *Admin) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", t.HandleWS)
	mux.HandleFunc("/admin/agents", a.HandleAgents)
	mux.HandleFunc("/admin/arrivals", a.HandleArrivals)
	mux.HandleFunc("/metrics", a.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
