package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"

	"rovernet/command"
)

func TestDecodeCommand(t *testing.T) {
	env, err := DecodeCommand([]byte(`{"type":"command","to":"rover1","command":{"commandName":"move-to-target","data":["1,0,2"]}}`))
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if env.To != "rover1" || env.Command.CommandName != command.NameMoveTo || len(env.Data()) != 1 || env.Data()[0] != "1,0,2" {
		t.Fatalf("envelope %+v", env)
	}
}

func TestDecodeCommandRejectsMalformed(t *testing.T) {
	bad := []string{
		`not json`,
		`{"type":"command","command":{"commandName":"x","data":[]}}`,
		`{"type":"command","to":"","command":{"commandName":"x","data":[]}}`,
		`{"type":"status","to":"rover1","command":{"commandName":"x","data":[]}}`,
		`{"type":"command","to":"rover1"}`,
		`{"type":"command","to":"rover1","command":{"data":[]}}`,
		`{"type":"command","to":"rover1","command":{"commandName":"x"}}`,
		`{"type":"command","to":"rover1","command":{"commandName":"x","data":[1,2,3]}}`,
		`[]`,
	}
	for _, b := range bad {
		if _, err := DecodeCommand([]byte(b)); !errors.Is(err, ErrBadEnvelope) {
			t.Fatalf("DecodeCommand(%s) err=%v, want ErrBadEnvelope", b, err)
		}
	}
}

func TestStatusEnvelope(t *testing.T) {
	env := NewStatus("rover1", "controller@x", "1,2,0")
	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := DecodeStatus(b)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if got != env {
		t.Fatalf("status %+v, want %+v", got, env)
	}
	if _, err := ulid.Parse(got.ID); err != nil {
		t.Fatalf("id is not a ULID: %v", err)
	}
	if _, err := DecodeStatus([]byte(`{"type":"command"}`)); !errors.Is(err, ErrBadEnvelope) {
		t.Fatalf("command envelope accepted as status")
	}
}

func TestNewCommandValidates(t *testing.T) {
	env := NewCommand("rover1", command.Message{CommandName: command.NameTakeImage, Data: []string{"0", "1"}})
	b, _ := json.Marshal(env)
	got, err := DecodeCommand(b)
	if err != nil {
		t.Fatalf("round trip through schema: %v", err)
	}
	if got.ID != env.ID || got.Command.CommandName != command.NameTakeImage {
		t.Fatalf("got %+v", got)
	}
}

func TestNewIDMonotonic(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		next := NewID()
		if next <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}
