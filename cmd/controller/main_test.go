package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rovernet/command"
	"rovernet/config"
	"rovernet/journal"
	"rovernet/registry"
	"rovernet/router"
	"rovernet/server"
)

func startHub(t *testing.T) string {
	t.Helper()
	cfg := config.Default()
	cfg.Agent.Speed = 10
	reg := registry.New()
	conns := server.NewConnManager(nil)
	w := server.NewWorld(server.WorldConfig{TickRateHz: 50, Agent: cfg.Agent, Outbound: cfg.Outbound}, server.WorldDeps{
		Registry: reg,
		Router:   router.New(reg, command.NewDecoder(true), nil),
		Outbox:   conns,
	})
	if _, err := w.Spawn(server.AgentSpec{Name: "rover1", Owner: "controller@test"}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	srv := httptest.NewServer(server.NewMux(server.NewTransport(w, conns), server.NewAdmin(w, conns, nil)))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSendWaitsForArrival(t *testing.T) {
	url := startHub(t)
	out, err := execute(t, "send",
		"--url", url,
		"--address", "controller@test",
		"--to", "ROVER1",
		"--command", command.NameMoveTo,
		"--arg", "1,0,2",
		"--wait", "1",
		"--timeout", "5s",
	)
	if err != nil {
		t.Fatalf("send: %v\n%s", err, out)
	}
	if !strings.Contains(out, "sent move-to-target to ROVER1") {
		t.Fatalf("missing send line:\n%s", out)
	}
	if !strings.Contains(out, "rover1 -> controller@test: 1,2,0") {
		t.Fatalf("missing arrival line:\n%s", out)
	}
}

func TestSendLegacyArrayArgs(t *testing.T) {
	url := startHub(t)
	out, err := execute(t, "send", "--url", url, "--address", "controller@test",
		"--to", "rover1", "--command", "move_agent", "--arg", "0", "--arg", "0", "--arg", "1",
		"--wait", "1", "--timeout", "5s")
	if err != nil {
		t.Fatalf("send: %v\n%s", err, out)
	}
	if !strings.Contains(out, "rover1 -> controller@test: 0,1,0") {
		t.Fatalf("missing arrival line:\n%s", out)
	}
}

func TestSendRequiresTarget(t *testing.T) {
	if _, err := execute(t, "send", "--command", command.NameMoveTo); err == nil {
		t.Fatalf("send without --to should fail")
	}
}

func TestSendDialFailure(t *testing.T) {
	_, err := execute(t, "send", "--url", "ws://127.0.0.1:1/ws", "--to", "rover1", "--command", command.NameMoveTo)
	if err == nil || !strings.Contains(err.Error(), "dial") {
		t.Fatalf("err=%v", err)
	}
}

func TestJournalPrintsEntries(t *testing.T) {
	dir := t.TempDir()
	jw := journal.NewWriter(dir, "traffic")
	msg := command.Message{CommandName: command.NameMoveTo, Data: []string{"1,0,2"}}
	entries := []journal.Entry{
		{Time: time.Now(), Kind: journal.KindCommand, From: "controller@test", To: "rover1", Command: &msg, Outcome: "delivered"},
		{Time: time.Now(), Kind: journal.KindStatus, From: "rover1", To: "controller@test", Body: "1,2,0"},
	}
	for _, e := range entries {
		if err := jw.Write(e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := jw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "traffic-*.jsonl.zst"))
	if len(files) != 1 {
		t.Fatalf("journal files %v", files)
	}

	out, err := execute(t, "journal", files[0])
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if !strings.Contains(out, "command controller@test -> rover1 move-to-target") || !strings.Contains(out, "rover1 -> controller@test: 1,2,0") {
		t.Fatalf("output:\n%s", out)
	}

	out, err = execute(t, "journal", "--kind", journal.KindStatus, files[0])
	if err != nil {
		t.Fatalf("journal --kind: %v", err)
	}
	if strings.Contains(out, "move-to-target") || !strings.Contains(out, "1,2,0") {
		t.Fatalf("kind filter output:\n%s", out)
	}
}
