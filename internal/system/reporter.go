package system

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"go.uber.org/zap"
)

// StatusSource supplies what the periodic status line reports.
type StatusSource interface {
	ClientCount() int
	Relays() []types.Relay
}

// Reporter logs a status line at a fixed interval.
type Reporter struct {
	source   StatusSource
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func NewReporter(source StatusSource, interval time.Duration, logger *zap.Logger) *Reporter {
	return &Reporter{
		source:   source,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins periodic reporting. A non-positive interval disables it.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running || r.interval <= 0 {
		return
	}

	r.running = true
	r.wg.Add(1)
	go r.loop()

	r.logger.Info("Status reporter started", zap.Duration("interval", r.interval))
}

func (r *Reporter) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopChan)
	r.wg.Wait()

	r.logger.Info("Status reporter stopped")
}

func (r *Reporter) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Reporter) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.Report()
		}
	}
}

// Report logs one status line now.
func (r *Reporter) Report() {
	clients := r.source.ClientCount()
	relays := r.source.Relays()

	r.logger.Info(StatusLine(clients, relays),
		zap.Int("connected_clients", clients),
		zap.Int("relays", len(relays)))
}

// StatusLine renders "Connected clients: 2, Relays: R1:ON, R2:OFF".
func StatusLine(clients int, relays []types.Relay) string {
	states := make([]string, 0, len(relays))
	for _, rl := range relays {
		states = append(states, rl.String())
	}
	return fmt.Sprintf("Connected clients: %d, Relays: %s", clients, strings.Join(states, ", "))
}
