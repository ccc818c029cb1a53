package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "rovernet.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func TestAgentsSurviveReopen(t *testing.T) {
	s, path := openTemp(t)
	s.SaveAgent(AgentRecord{Name: "rover1", Owner: "controller@x", Position: [3]float64{1, 0, 2}})
	s.SaveAgent(AgentRecord{Name: "rover2", Owner: "controller@y"})
	s.SaveAgent(AgentRecord{Name: "rover1", Owner: "controller@x", Position: [3]float64{5, 0, 5}})
	s.DeleteAgent("rover2")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()
	recs, err := s2.LoadAgents(context.Background())
	if err != nil {
		t.Fatalf("LoadAgents: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "rover1" || recs[0].Position != [3]float64{5, 0, 5} {
		t.Fatalf("records %+v", recs)
	}
	if recs[0].UpdatedAt.IsZero() {
		t.Fatalf("updated_at not stored")
	}
}

func TestArrivals(t *testing.T) {
	s, _ := openTemp(t)
	defer func() { _ = s.Close() }()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.RecordArrival(Arrival{ID: "01A", Agent: "rover1", Owner: "c", Position: [3]float64{1, 0, 2}, At: base})
	s.RecordArrival(Arrival{ID: "01B", Agent: "rover1", Owner: "c", Position: [3]float64{2, 0, 2}, At: base.Add(time.Second)})
	s.RecordArrival(Arrival{ID: "01C", Agent: "rover2", Owner: "c"})
	s.Flush()

	got, err := s.Arrivals(context.Background(), "rover1", 10)
	if err != nil {
		t.Fatalf("Arrivals: %v", err)
	}
	if len(got) != 2 || got[0].ID != "01B" || got[1].ID != "01A" {
		t.Fatalf("arrivals %+v", got)
	}
	if !got[1].At.Equal(base) {
		t.Fatalf("at=%v", got[1].At)
	}
}

func TestClosedStoreIgnoresWrites(t *testing.T) {
	s, _ := openTemp(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	s.SaveAgent(AgentRecord{Name: "late"})
	s.Flush()
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Fatalf("empty path should fail")
	}
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	// 不启动写协程，队列容量 1
	s := &Store{log: zap.NewNop().Sugar(), ch: make(chan req, 1)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.SaveAgent(AgentRecord{Name: "rover1", Owner: "c"})
		s.RecordArrival(Arrival{ID: "a1", Agent: "rover1"})
		s.DeleteAgent("rover1")
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue blocked on a full queue")
	}
	if got := s.Dropped(); got != 2 {
		t.Fatalf("dropped=%d, want 2", got)
	}
	if r := <-s.ch; r.kind != reqSaveAgent {
		t.Fatalf("queued kind=%v", r.kind)
	}
}
