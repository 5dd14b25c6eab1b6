// Package sync reloads long-lived views from storage so they see writes
// made by other processes sharing the same backend.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SyncState represents the current state of a reload.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// Loader rereads its state from storage.
type Loader interface {
	Load(ctx context.Context) error
}

// SyncStatus holds the reload state for one named loader.
type SyncStatus struct {
	Name     string
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a reload completes.
type SyncResultMsg struct {
	Name  string
	Error error
}

// loadTimeout is the maximum time allowed for a single reload.
const loadTimeout = 10 * time.Second

type entry struct {
	name   string
	loader Loader
}

// Poller reloads registered loaders on a fixed interval.
type Poller struct {
	interval  time.Duration
	now       func() time.Time
	loaders   []entry
	statuses  map[string]*SyncStatus
	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller that reloads every interval. A non-positive
// interval only reloads on RefreshAll.
func New(interval time.Duration) *Poller {
	return &Poller{
		interval:  interval,
		now:       time.Now,
		statuses:  make(map[string]*SyncStatus),
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Register adds a loader under name. It must be called before Start.
func (p *Poller) Register(name string, l Loader) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loaders = append(p.loaders, entry{name: name, loader: l})
	p.statuses[name] = &SyncStatus{Name: name, State: SyncIdle}
}

// Start returns a tea.Cmd that starts the polling goroutine and waits for
// the first result.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine. It is safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// RefreshAll triggers an immediate reload of every loader.
func (p *Poller) RefreshAll() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A reload is already pending.
	}
}

// GetStatuses returns the reload state of every loader in registration
// order.
func (p *Poller) GetStatuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]SyncStatus, 0, len(p.loaders))
	for _, e := range p.loaders {
		statuses = append(statuses, *p.statuses[e.name])
	}
	return statuses
}

func (p *Poller) loop() {
	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-p.stopCh:
			return
		case <-tick:
			p.reloadAll()
		case <-p.triggerCh:
			p.reloadAll()
		}
	}
}

func (p *Poller) reloadAll() {
	p.mu.Lock()
	loaders := make([]entry, len(p.loaders))
	copy(loaders, p.loaders)
	p.mu.Unlock()

	for _, e := range loaders {
		p.reload(e)
	}
}

// reload runs one loader and reports the outcome on the result channel.
func (p *Poller) reload(e entry) {
	p.setStatus(e.name, SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	if err := e.loader.Load(ctx); err != nil {
		p.setStatus(e.name, SyncError, err)
		p.sendResult(SyncResultMsg{Name: e.name, Error: err})
		return
	}

	p.setStatus(e.name, SyncIdle, nil)
	p.sendResult(SyncResultMsg{Name: e.name})
}

// setStatus updates the reload status for one loader.
func (p *Poller) setStatus(name string, state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[name]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == SyncIdle {
		status.LastSync = p.now()
	}
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next reload
// result. Call it after handling each SyncResultMsg.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
