package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Writer is a Backend that queues snapshot writes and applies them on a
// single background goroutine. Only the newest value per key is kept, so
// writes for one key are applied in order and never overtake each other.
// Callers update their in-memory state first and learn about failed writes
// through Errors or the error callback.
type Writer struct {
	backend Backend
	logger  *slog.Logger
	metrics *Metrics
	onError func(key string, err error)

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	running bool

	// inflight holds the batch being written. Load consults it after
	// pending so a value is visible until the backend has it.
	inflight map[string][]byte

	// writeMu is held for a whole drain so a later batch can never be
	// written before an earlier one.
	writeMu sync.Mutex

	errCh  chan error
	wake   chan struct{}
	stopCh chan struct{}
	done   chan struct{}
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriterLogger sets the logger used for failed writes.
func WithWriterLogger(l *slog.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

// WithWriterMetrics records writes on m.
func WithWriterMetrics(m *Metrics) WriterOption {
	return func(w *Writer) { w.metrics = m }
}

// WithErrorHandler registers a callback invoked for every failed write.
func WithErrorHandler(fn func(key string, err error)) WriterOption {
	return func(w *Writer) { w.onError = fn }
}

// NewWriter wraps b. Call Start to begin background writing; until then
// Save writes through synchronously.
func NewWriter(b Backend, opts ...WriterOption) *Writer {
	w := &Writer{
		backend: b,
		logger:  slog.Default(),
		pending:  make(map[string][]byte),
		inflight: make(map[string][]byte),
		errCh:   make(chan error, 16),
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the background goroutine.
func (w *Writer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	go w.loop()
}

// Stop halts the background goroutine and flushes anything still queued.
func (w *Writer) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.running = false
		close(w.stopCh)
		w.mu.Unlock()
		<-w.done
	} else {
		w.mu.Unlock()
	}
	return w.Flush(ctx)
}

// Errors delivers failed writes as *SaveError. Errors are dropped when
// nobody drains the channel.
func (w *Writer) Errors() <-chan error {
	return w.errCh
}

// Pending returns the number of queued keys.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Load returns a queued or in-flight value if there is one, otherwise the
// stored value.
func (w *Writer) Load(ctx context.Context, key string) ([]byte, error) {
	w.mu.Lock()
	v, ok := w.pending[key]
	if !ok {
		v, ok = w.inflight[key]
	}
	if ok {
		out := append([]byte(nil), v...)
		w.mu.Unlock()
		return out, nil
	}
	w.mu.Unlock()
	return w.backend.Load(ctx, key)
}

// Save queues data under key, replacing any value still waiting.
func (w *Writer) Save(ctx context.Context, key string, data []byte) error {
	w.mu.Lock()
	if _, ok := w.pending[key]; !ok {
		w.order = append(w.order, key)
	}
	w.pending[key] = append([]byte(nil), data...)
	w.metrics.setPending(len(w.pending))
	running := w.running
	w.mu.Unlock()

	if !running {
		return w.drain(ctx)
	}

	select {
	case w.wake <- struct{}{}:
	default:
		// A wake-up is already queued.
	}
	return nil
}

// Delete drops any queued value and removes key from the backend.
func (w *Writer) Delete(ctx context.Context, key string) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if _, ok := w.pending[key]; ok {
		delete(w.pending, key)
		for i, k := range w.order {
			if k == key {
				w.order = append(w.order[:i], w.order[i+1:]...)
				break
			}
		}
	}
	w.metrics.setPending(len(w.pending))
	w.mu.Unlock()

	return w.backend.Delete(ctx, key)
}

// Flush writes everything queued and returns the first failure.
func (w *Writer) Flush(ctx context.Context) error {
	return w.drain(ctx)
}

// Close stops the writer and closes the wrapped backend.
func (w *Writer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	flushErr := w.Stop(ctx)
	if err := w.backend.Close(); err != nil {
		return err
	}
	return flushErr
}

func (w *Writer) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopCh:
			return
		case <-w.wake:
			_ = w.drain(context.Background())
		}
	}
}

// drain takes the current batch and writes it in first-queued order. A
// failed key is dropped from the batch and not retried; the next Save of
// that key queues a full snapshot again.
func (w *Writer) drain(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	batch := w.pending
	order := w.order
	w.inflight = batch
	w.pending = make(map[string][]byte)
	w.order = nil
	w.metrics.setPending(0)
	w.mu.Unlock()

	var first error
	for _, key := range order {
		data := batch[key]
		start := time.Now()
		err := w.backend.Save(ctx, key, data)
		w.metrics.observe(key, len(data), time.Since(start), err)

		w.mu.Lock()
		delete(w.inflight, key)
		w.mu.Unlock()

		if err == nil {
			continue
		}

		saveErr := &SaveError{Key: key, Err: err}
		w.report(saveErr)
		if first == nil {
			first = saveErr
		}
	}
	return first
}

// report surfaces a failed write without blocking the writer.
func (w *Writer) report(err *SaveError) {
	w.logger.Warn("snapshot write failed", slog.String("key", err.Key), slog.String("error", err.Err.Error()))
	if w.onError != nil {
		w.onError(err.Key, err.Err)
	}
	select {
	case w.errCh <- err:
	default:
		// Drop if channel is full to avoid blocking the writer
	}
}
