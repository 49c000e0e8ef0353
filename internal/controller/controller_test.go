package controller

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/KevinKickass/OpenRelayCore/internal/command"
	"github.com/KevinKickass/OpenRelayCore/internal/relay"
	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"go.uber.org/zap"
)

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages [][]byte
}

func (b *recordingBroadcaster) Broadcast(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, data)
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

type recordingListener struct {
	changes []types.Relay
}

func (l *recordingListener) RelayChanged(r types.Relay) {
	l.changes = append(l.changes, r)
}

func newTestController(t *testing.T) (*Controller, *recordingBroadcaster) {
	t.Helper()

	defs := []types.RelayDefinition{
		{Pin: 18, Name: "Living Light"},
		{Pin: 19, Name: "Bedroom Light"},
	}
	reg, err := relay.NewRegistry(defs, relay.NewSimulatedOutput(zap.NewNop()), zap.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	c := NewController(zap.NewNop(), reg, "test-device")
	b := &recordingBroadcaster{}
	c.SetBroadcaster(b)
	return c, b
}

func TestExecuteRawBroadcastsEveryOutcome(t *testing.T) {
	c, b := newTestController(t)

	frames := []string{
		`{"relay_id":1,"action":"on"}`,
		`{"action":"status"}`,
		`{"relay_id":2,"action":"status"}`,
		`{"relay_id":7,"action":"on"}`,
		"garbage",
	}
	for _, f := range frames {
		c.ExecuteRaw([]byte(f))
	}

	if b.count() != len(frames) {
		t.Fatalf("broadcasts = %d, want %d", b.count(), len(frames))
	}

	var first map[string]any
	if err := json.Unmarshal(b.messages[0], &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first["action"] != "on" || first["state"] != true {
		t.Errorf("first broadcast = %s", b.messages[0])
	}

	var last map[string]any
	if err := json.Unmarshal(b.messages[len(b.messages)-1], &last); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if last["status"] != "error" || last["command"] != "garbage" {
		t.Errorf("last broadcast = %s", b.messages[len(b.messages)-1])
	}
}

func TestExecuteHTTPBroadcastsOnlyMutations(t *testing.T) {
	c, b := newTestController(t)

	c.Execute(command.ForRelay(command.ActionGetStatus, 1), OriginHTTP)
	c.Execute(command.Global(command.ActionGetAllStatus), OriginHTTP)
	c.Execute(command.ForRelay(command.ActionTurnOn, 9), OriginHTTP)
	if b.count() != 0 {
		t.Fatalf("reads and failures over HTTP broadcast %d messages", b.count())
	}

	out := c.Execute(command.ForRelay(command.ActionToggle, 2), OriginHTTP)
	if !out.OK || !out.Affected[0].State {
		t.Fatalf("toggle outcome = %+v", out)
	}
	c.Execute(command.Global(command.ActionAllOff), OriginHTTP)

	if b.count() != 2 {
		t.Errorf("broadcasts = %d, want 2", b.count())
	}
}

func TestStateListenerSeesEveryWrite(t *testing.T) {
	c, _ := newTestController(t)
	l := &recordingListener{}
	c.AddStateListener(l)

	c.ExecuteRaw([]byte(`{"relay_id":2,"action":"on"}`))
	c.ExecuteRaw([]byte(`{"relay_id":2,"action":"status"}`))
	c.ExecuteRaw([]byte(`{"action":"all_off"}`))

	if len(l.changes) != 3 {
		t.Fatalf("listener changes = %+v, want 3", l.changes)
	}
	if l.changes[0].ID != 2 || !l.changes[0].State {
		t.Errorf("first change = %+v", l.changes[0])
	}
	if l.changes[1].ID != 1 || l.changes[2].ID != 2 || l.changes[2].State {
		t.Errorf("batch changes = %+v", l.changes[1:])
	}
}

func TestWelcome(t *testing.T) {
	c, _ := newTestController(t)
	c.ExecuteRaw([]byte(`{"relay_id":1,"action":"on"}`))

	var body struct {
		Message string `json:"message"`
		Relays  []struct {
			ID    int  `json:"id"`
			State bool `json:"state"`
		} `json:"relays"`
	}
	if err := json.Unmarshal(c.Welcome(), &body); err != nil {
		t.Fatalf("invalid welcome JSON: %v", err)
	}
	if body.Message != "Connected to test-device" {
		t.Errorf("message = %q", body.Message)
	}
	if len(body.Relays) != 2 || !body.Relays[0].State || body.Relays[1].State {
		t.Errorf("relays = %+v", body.Relays)
	}
}

func TestConcurrentBatchesDoNotInterleave(t *testing.T) {
	c, b := newTestController(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			if on {
				c.ExecuteRaw([]byte(`{"action":"all_on"}`))
			} else {
				c.Execute(command.Global(command.ActionAllOff), OriginHTTP)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	// Every batch reports a uniform snapshot: no other command ran halfway
	// through it.
	for _, msg := range b.messages {
		var body struct {
			Action string `json:"action"`
			Relays []struct {
				State bool `json:"state"`
			} `json:"relays"`
		}
		if err := json.Unmarshal(msg, &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		want := body.Action == "all_on"
		for _, rl := range body.Relays {
			if rl.State != want {
				t.Errorf("%s broadcast has mixed states: %s", body.Action, msg)
			}
		}
	}

	if c.ExecutedCount() != 20 {
		t.Errorf("ExecutedCount() = %d, want 20", c.ExecutedCount())
	}
}
