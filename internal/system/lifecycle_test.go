package system

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KevinKickass/OpenRelayCore/internal/config"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Server.HTTPPort = freePort(t)
	cfg.Server.StatusInterval = 0
	cfg.Device.Name = "lifecycle-test"
	return cfg
}

func TestLifecycleStartAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	lm := NewLifecycleManager(cfg, zap.NewNop())

	if err := lm.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if lm.State() != StateRunning {
		t.Fatalf("State() = %s", lm.State())
	}

	base := fmt.Sprintf("127.0.0.1:%d", cfg.Server.HTTPPort)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+base+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, welcome, err := conn.ReadMessage()
	if err != nil || !strings.Contains(string(welcome), "Connected to lifecycle-test") {
		t.Fatalf("welcome = %s, err = %v", welcome, err)
	}

	resp, err := http.Post("http://"+base+"/api/relay/control?id=2&action=on", "", nil)
	if err != nil {
		t.Fatalf("POST control: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.TrimSpace(string(body)) != `{"success":true,"relay":2,"state":true}` {
		t.Errorf("control body = %s", body)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, update, err := conn.ReadMessage()
	if err != nil || string(update) != `{"status":"success","relay_id":2,"action":"on","state":true}` {
		t.Errorf("broadcast = %s, err = %v", update, err)
	}

	status := lm.GetCurrentStatus()
	if status.State != "RUNNING" || status.RelayCount != 2 || status.CommandsExecuted != 1 {
		t.Errorf("status = %+v", status)
	}
	if len(lm.Relays()) != 2 || !lm.Relays()[1].State {
		t.Errorf("Relays() = %+v", lm.Relays())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := lm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if lm.State() != StateStopped {
		t.Errorf("State() after shutdown = %s", lm.State())
	}
	select {
	case <-lm.Done():
	default:
		t.Error("Done() not closed after Shutdown")
	}

	// Second call is a no-op.
	if err := lm.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestLifecycleStartFailsOnBadRelayFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Relays.File = filepath.Join(t.TempDir(), "relays.yaml")
	if err := os.WriteFile(cfg.Relays.File, []byte("relays: []\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	lm := NewLifecycleManager(cfg, zap.NewNop())
	if err := lm.Start(); err == nil {
		t.Fatal("Start() expected error for empty relay table")
	}
	if lm.State() != StateError {
		t.Errorf("State() = %s, want ERROR", lm.State())
	}
}

func TestLifecycleFailedStartReleasesHub(t *testing.T) {
	cfg := testConfig(t)

	busy, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.HTTPPort))
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	lm := NewLifecycleManager(cfg, zap.NewNop())
	if err := lm.Start(); err == nil {
		t.Fatal("Start() expected error for a busy port")
	}
	if lm.State() != StateError {
		t.Errorf("State() = %s, want ERROR", lm.State())
	}

	select {
	case <-lm.wsHub.Done():
	case <-time.After(2 * time.Second):
		t.Error("WebSocket hub still running after failed start")
	}
}
