package journal

import (
	"path/filepath"
	"testing"
	"time"

	"rovernet/command"
)

func TestWriteAndRotate(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "commands")
	clock := time.Date(2026, 10, 17, 9, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	msg := &command.Message{CommandName: command.NameMoveTo, Data: []string{"1,0,2"}}
	if err := w.Write(Entry{Kind: KindCommand, From: "controller@x", To: "rover1", Command: msg, Outcome: "delivered"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(Entry{Kind: KindStatus, From: "rover1", To: "controller@x", Body: "1,2,0"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := w.Write(Entry{Kind: KindStatus, From: "rover1", To: "controller@x", Body: "0,0,0"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	first, err := ReadFile(filepath.Join(dir, "commands-2026-10-17-09.jsonl.zst"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(first) != 2 || first[0].Command == nil || first[0].Command.Data[0] != "1,0,2" || first[1].Body != "1,2,0" {
		t.Fatalf("first hour %+v", first)
	}
	if !first[0].Time.Equal(time.Date(2026, 10, 17, 9, 59, 0, 0, time.UTC)) {
		t.Fatalf("time=%v", first[0].Time)
	}
	second, err := ReadFile(filepath.Join(dir, "commands-2026-10-17-10.jsonl.zst"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(second) != 1 || second[0].Body != "0,0,0" {
		t.Fatalf("second hour %+v", second)
	}
}

func TestReopenAppends(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		w := NewWriter(dir, "j")
		w.now = func() time.Time { return clock }
		if err := w.Write(Entry{Kind: KindStatus, Body: "x"}); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	got, err := ReadFile(filepath.Join(dir, "j-2026-10-17-09.jsonl.zst"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries=%d, want 2 (concatenated zstd frames)", len(got))
	}
}
