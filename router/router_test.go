package router

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rovernet/codec"
	"rovernet/command"
	"rovernet/registry"
)

type recorder struct {
	cmds    []command.Command
	senders []string
	err     error
	panic   bool
}

func (r *recorder) HandleCommand(cmd command.Command, sender string) error {
	if r.panic {
		panic("boom")
	}
	r.cmds = append(r.cmds, cmd)
	r.senders = append(r.senders, sender)
	return r.err
}

func newRouter(t *testing.T) (*Router, *registry.Registry, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	reg := registry.New()
	return New(reg, command.NewDecoder(true), zap.New(core).Sugar()), reg, logs
}

func TestDeliverRoundTrip(t *testing.T) {
	rt, reg, _ := newRouter(t)
	rc := &recorder{}
	if _, err := reg.Register("rover1", rc); err != nil {
		t.Fatalf("register: %v", err)
	}
	out := rt.Deliver("Rover1", command.Message{CommandName: command.NameMoveTo, Data: []string{"1,0,2"}}, "controller@x")
	if out != Delivered {
		t.Fatalf("outcome=%v", out)
	}
	if len(rc.cmds) != 1 || rc.cmds[0] != (command.MoveTo{Target: codec.Vec3{X: 1, Z: 2}}) {
		t.Fatalf("receiver got %#v", rc.cmds)
	}
	if rc.senders[0] != "controller@x" {
		t.Fatalf("sender=%q", rc.senders[0])
	}
}

func TestUnknownTargetIsSafe(t *testing.T) {
	rt, reg, logs := newRouter(t)
	rc := &recorder{}
	_, _ = reg.Register("rover1", rc)

	out := rt.Deliver("ghost", command.Message{CommandName: command.NameMoveTo, Data: []string{"1,0,2"}}, "c")
	if out != UnknownTarget {
		t.Fatalf("outcome=%v", out)
	}
	if out := rt.Route("ghost", command.MoveTo{}, "c"); out != UnknownTarget {
		t.Fatalf("Route outcome=%v", out)
	}
	if len(rc.cmds) != 0 {
		t.Fatalf("unrelated receiver was touched")
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 2 {
		t.Fatalf("expected two warnings, got %d", logs.FilterLevelExact(zapcore.WarnLevel).Len())
	}
}

func TestUnknownCommandWarns(t *testing.T) {
	rt, reg, logs := newRouter(t)
	rc := &recorder{}
	_, _ = reg.Register("rover1", rc)
	if out := rt.Deliver("rover1", command.Message{CommandName: "dance"}, "c"); out != UnknownCommand {
		t.Fatalf("outcome=%v", out)
	}
	if len(rc.cmds) != 0 {
		t.Fatalf("receiver should not see unknown commands")
	}
	if logs.FilterMessage("unrecognized command").Len() != 1 {
		t.Fatalf("missing unrecognized command warning")
	}
}

func TestMalformedIsSilentNoop(t *testing.T) {
	rt, reg, logs := newRouter(t)
	rc := &recorder{}
	_, _ = reg.Register("rover1", rc)
	msgs := []command.Message{
		{CommandName: command.NameMoveTo},
		{CommandName: command.NameChangeColor, Data: []string{"red"}},
		{CommandName: command.NameCameraFOV, Data: []string{"0"}},
		{CommandName: command.NameCameraMove, Data: []string{"0", "1"}},
		{CommandName: command.NameCameraRotate, Data: []string{"a", "b", "c"}},
		{CommandName: command.NameTakeImage, Data: []string{}},
	}
	for _, m := range msgs {
		if out := rt.Deliver("rover1", m, "c"); out != Malformed {
			t.Fatalf("Deliver(%+v)=%v, want Malformed", m, out)
		}
	}
	if len(rc.cmds) != 0 {
		t.Fatalf("malformed commands reached the receiver")
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 0 {
		t.Fatalf("malformed arguments should not warn")
	}
}

func TestHandlerFailuresAreIsolated(t *testing.T) {
	rt, reg, _ := newRouter(t)
	bad := &recorder{panic: true}
	failing := &recorder{err: errors.New("no camera")}
	good := &recorder{}
	_, _ = reg.Register("bad", bad)
	_, _ = reg.Register("failing", failing)
	_, _ = reg.Register("good", good)

	if out := rt.Route("bad", command.CameraFOV{}, "c"); out != Failed {
		t.Fatalf("panic outcome=%v", out)
	}
	if out := rt.Route("failing", command.CameraFOV{}, "c"); out != Failed {
		t.Fatalf("error outcome=%v", out)
	}
	if out := rt.Route("good", command.CameraFOV{Camera: 1, FOV: 50}, "c"); out != Delivered {
		t.Fatalf("good outcome=%v", out)
	}
	if len(good.cmds) != 1 {
		t.Fatalf("good receiver missed its command")
	}
	if out := rt.Route("good", nil, "c"); out != Malformed {
		t.Fatalf("nil command outcome=%v", out)
	}
}

func TestOutcomeString(t *testing.T) {
	if Delivered.String() != "delivered" || UnknownTarget.String() != "unknown_target" || Outcome(99).String() != "unknown" {
		t.Fatalf("Outcome.String mismatch")
	}
}
