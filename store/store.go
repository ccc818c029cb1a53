// Package store 把实体名册与到达记录持久化到 SQLite。
// 写操作经由缓冲通道交给单独的写协程，不阻塞世界 Tick；队列满时丢弃并记录告警。
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"go.uber.org/zap"
)

// AgentRecord 名册中的一个实体
type AgentRecord struct {
	Name      string     `json:"name"`
	Owner     string     `json:"owner"`
	Position  [3]float64 `json:"position"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Arrival 一次到达通知
type Arrival struct {
	ID       string     `json:"id"`
	Agent    string     `json:"agent"`
	Owner    string     `json:"owner"`
	Position [3]float64 `json:"position"`
	At       time.Time  `json:"at"`
}

type reqKind int

const (
	reqSaveAgent reqKind = iota + 1
	reqDeleteAgent
	reqArrival
	reqFlush
)

type req struct {
	kind    reqKind
	agent   AgentRecord
	name    string
	arrival Arrival
	done    chan struct{}
}

type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger

	mu      sync.RWMutex // 发送方持读锁，Close 持写锁
	closed  bool
	ch      chan req
	dropped atomic.Int64
	wg     sync.WaitGroup
}

// Open 打开（必要时创建）数据库并启动写协程
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, log: log, ch: make(chan req, 4096)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS agents (
			name TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS arrivals (
			id TEXT PRIMARY KEY,
			agent TEXT NOT NULL,
			owner TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL,
			at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS arrivals_agent ON arrivals(agent, id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// SaveAgent 新增或更新名册条目
func (s *Store) SaveAgent(rec AgentRecord) {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	s.enqueue(req{kind: reqSaveAgent, agent: rec})
}

func (s *Store) DeleteAgent(name string) {
	s.enqueue(req{kind: reqDeleteAgent, name: name})
}

func (s *Store) RecordArrival(a Arrival) {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	s.enqueue(req{kind: reqArrival, arrival: a})
}

// enqueue 非阻塞入队；队列满时丢弃写请求
func (s *Store) enqueue(r req) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- r:
		return true
	default:
		n := s.dropped.Add(1)
		s.log.Warnw("store queue full, write dropped", "kind", r.kind, "dropped", n)
		return false
	}
}

// Dropped 因队列满被丢弃的写请求数
func (s *Store) Dropped() int64 { return s.dropped.Load() }

func (s *Store) loop() {
	for r := range s.ch {
		var err error
		switch r.kind {
		case reqSaveAgent:
			a := r.agent
			_, err = s.db.Exec(`INSERT INTO agents(name, owner, x, y, z, updated_at) VALUES(?,?,?,?,?,?)
				ON CONFLICT(name) DO UPDATE SET owner=excluded.owner, x=excluded.x, y=excluded.y, z=excluded.z, updated_at=excluded.updated_at`,
				a.Name, a.Owner, a.Position[0], a.Position[1], a.Position[2], a.UpdatedAt.UTC().Format(time.RFC3339Nano))
		case reqDeleteAgent:
			_, err = s.db.Exec(`DELETE FROM agents WHERE name = ?`, r.name)
		case reqArrival:
			a := r.arrival
			_, err = s.db.Exec(`INSERT INTO arrivals(id, agent, owner, x, y, z, at) VALUES(?,?,?,?,?,?,?)`,
				a.ID, a.Agent, a.Owner, a.Position[0], a.Position[1], a.Position[2], a.At.UTC().Format(time.RFC3339Nano))
		case reqFlush:
			close(r.done)
		}
		if err != nil {
			s.log.Warnw("store write failed", "kind", r.kind, "err", err)
		}
	}
}

// LoadAgents 读取全部名册（按名称排序）
func (s *Store) LoadAgents(ctx context.Context) ([]AgentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, owner, x, y, z, updated_at FROM agents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []AgentRecord
	for rows.Next() {
		var rec AgentRecord
		var updated string
		if err := rows.Scan(&rec.Name, &rec.Owner, &rec.Position[0], &rec.Position[1], &rec.Position[2], &updated); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Arrivals 某个实体最近的到达记录，按时间倒序
func (s *Store) Arrivals(ctx context.Context, agent string, limit int) ([]Arrival, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, agent, owner, x, y, z, at FROM arrivals WHERE agent = ? ORDER BY id DESC LIMIT ?`, agent, limit)
	if err != nil {
		return nil, fmt.Errorf("query arrivals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Arrival
	for rows.Next() {
		var a Arrival
		var at string
		if err := rows.Scan(&a.ID, &a.Agent, &a.Owner, &a.Position[0], &a.Position[1], &a.Position[2], &at); err != nil {
			return nil, fmt.Errorf("scan arrival: %w", err)
		}
		a.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Flush 等待此前入队的写请求全部执行完（调用方阻塞，不用于 Tick 协程）
func (s *Store) Flush() {
	done := make(chan struct{})
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	s.ch <- req{kind: reqFlush, done: done}
	s.mu.RUnlock()
	<-done
}

// Close 排空写队列后关闭数据库
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	s.wg.Wait()
	return s.db.Close()
}
