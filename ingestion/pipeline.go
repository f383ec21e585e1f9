package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/storage"
)

const (
	// DefaultStageDelay is how long after CAPTURE the normalizing event is recorded.
	DefaultStageDelay = 400 * time.Millisecond

	// DefaultSyncDelay is how long after EMBED the replication event is recorded.
	DefaultSyncDelay = 800 * time.Millisecond

	previewRunes = 30
)

// Event messages recorded by a run.
const (
	NormalizingMessage = "Normalizing input data structure..."
	ExtractedMessage   = "Context extracted successfully."
	FailedMessage      = "Failed to extract structure. Check API Key."
	StoreFailedMessage = "Failed to store extracted structure."
	ReplicatingMessage = "Replicating state to connected agents..."
)

// Receipt describes what one successful run added to the stores.
type Receipt struct {
	// Introduced is the number of labels new to the graph.
	Introduced int
	Point      *core.VectorPoint
	Extraction *ai.Extraction
}

// Pipeline turns free text into graph nodes, relationships and a vector point,
// narrating every step to the event log.
type Pipeline struct {
	graphRepository  storage.GraphRepository
	vectorRepository storage.VectorRepository
	eventRepository  storage.EventRepository
	extractor        ai.Extractor
	pool             *ants.Pool
	graphProc        *graphProcessor
	vectorProc       *vectorProcessor
	monitor          Monitor
	stageDelay       time.Duration
	syncDelay        time.Duration
	logger           *slog.Logger

	inFlight atomic.Int64

	// ctx outlives callers of Ingest and is cancelled by Release.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	released bool
	wg       sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize caps the number of concurrent runs. Ingest waits for a free
// worker once the cap is reached. Zero or less means unbounded, the default.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMonitor sets the hooks notified about run lifecycle and store sizes.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		p.monitor = monitor
		return nil
	}
}

// WithStageDelay sets the delay before the normalizing event.
func WithStageDelay(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("stage delay cannot be negative: %s", d)
		}
		p.stageDelay = d
		return nil
	}
}

// WithSyncDelay sets the delay before the replication event.
func WithSyncDelay(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("sync delay cannot be negative: %s", d)
		}
		p.syncDelay = d
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	graphRepository storage.GraphRepository,
	vectorRepository storage.VectorRepository,
	eventRepository storage.EventRepository,
	extractor ai.Extractor,
	opts ...Option,
) (*Pipeline, error) {
	if graphRepository == nil {
		return nil, ErrGraphRepositoryRequired
	}
	if vectorRepository == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if eventRepository == nil {
		return nil, ErrEventRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	pool, err := ants.NewPool(0)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		graphRepository:  graphRepository,
		vectorRepository: vectorRepository,
		eventRepository:  eventRepository,
		extractor:        extractor,
		pool:             pool,
		monitor:          &noopMonitor{},
		stageDelay:       DefaultStageDelay,
		syncDelay:        DefaultSyncDelay,
		logger:           slog.Default(),
		ctx:              ctx,
		cancel:           cancel,
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.logger = p.logger.With("component", "ingestion")
	p.graphProc = newGraphProcessor(graphRepository, p.logger)
	p.vectorProc = newVectorProcessor(vectorRepository, p.logger)

	return p, nil
}

// Ingest validates text and hands the run to the worker pool. It returns once
// the run is accepted; the outcome is reported through the event log only.
// Empty or whitespace-only text returns ErrEmptyInput with no side effects.
func (p *Pipeline) Ingest(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.track() {
		return ErrPipelineReleased
	}

	p.begin()
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		if _, err := p.run(p.ctx, text); err != nil {
			p.logger.Warn("ingestion failed", "err", err)
		}
	})
	if err != nil {
		err = fmt.Errorf("submit ingestion: %w", err)
		p.finish(err)
		p.wg.Done()
		return err
	}
	return nil
}

// IngestSync runs one ingestion on the caller's goroutine. Gateway failures
// are returned wrapped in ErrExtractionFailed after being logged as events.
func (p *Pipeline) IngestSync(ctx context.Context, text string) (*Receipt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if !p.track() {
		return nil, ErrPipelineReleased
	}
	defer p.wg.Done()
	p.begin()
	return p.run(ctx, text)
}

// Busy reports whether any ingestion is in flight.
func (p *Pipeline) Busy() bool {
	return p.inFlight.Load() > 0
}

// Wait blocks until every accepted run and pending delayed event has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release cancels pending delayed events, waits for in-flight runs and
// releases the worker pool. The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}

// track registers one unit of background work unless the pipeline is released.
func (p *Pipeline) track() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.released {
		return false
	}
	p.wg.Add(1)
	return true
}

// begin marks a run as in flight. Every begin is paired with one finish.
func (p *Pipeline) begin() {
	p.inFlight.Add(1)
	p.monitor.IngestStarted()
}

func (p *Pipeline) finish(err error) {
	p.inFlight.Add(-1)
	p.monitor.IngestFinished(err)
}

// run executes the stages of one accepted ingestion and finishes it.
func (p *Pipeline) run(ctx context.Context, text string) (receipt *Receipt, err error) {
	defer func() { p.finish(err) }()

	p.record(ctx, core.EventCapture, fmt.Sprintf("Received context: \"%s\"", core.Preview(text, previewRunes)))

	normalized := make(chan struct{})
	go func() {
		defer close(normalized)
		timer := time.NewTimer(p.stageDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		p.record(context.WithoutCancel(ctx), core.EventProcess, NormalizingMessage)
	}()

	extraction, extractErr := p.extractor.Extract(ctx, text)
	<-normalized

	if extractErr == nil && extraction == nil {
		extractErr = ai.ErrEmptyResponse
	}
	if extractErr != nil {
		p.record(ctx, core.EventProcess, FailedMessage)
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, extractErr)
	}
	extraction.Normalize()

	p.record(ctx, core.EventProcess, ExtractedMessage)

	// graph and vector writes commit together; their events follow the commit
	type stageEvent struct {
		eventType core.EventType
		message   string
	}
	var stages []stageEvent
	receipt = &Receipt{Extraction: extraction}
	err = p.graphRepository.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, proc := range []processor{p.graphProc, p.vectorProc} {
			eventType, message, procErr := proc.process(txCtx, text, extraction, receipt)
			if procErr != nil {
				return procErr
			}
			stages = append(stages, stageEvent{eventType, message})
		}
		return nil
	})
	if err != nil {
		p.record(ctx, core.EventProcess, StoreFailedMessage)
		return nil, fmt.Errorf("store extraction: %w", err)
	}
	for _, stage := range stages {
		p.record(ctx, stage.eventType, stage.message)
	}

	nodes, err := p.graphRepository.NodeCount(ctx)
	if err != nil {
		return nil, err
	}
	vectors, err := p.vectorRepository.PointCount(ctx)
	if err != nil {
		return nil, err
	}
	p.monitor.StoreChanged(nodes, vectors)

	p.scheduleSync()
	return receipt, nil
}

// scheduleSync records the replication event after the sync delay unless the
// pipeline is released first.
func (p *Pipeline) scheduleSync() {
	if !p.track() {
		return
	}
	go func() {
		defer p.wg.Done()
		timer := time.NewTimer(p.syncDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
			p.record(p.ctx, core.EventSync, ReplicatingMessage)
		case <-p.ctx.Done():
		}
	}()
}

// record appends an event. Failures are logged and never abort a run.
func (p *Pipeline) record(ctx context.Context, eventType core.EventType, message string) {
	if _, err := p.eventRepository.Record(ctx, eventType, message); err != nil {
		p.logger.Error("error recording event", "type", eventType, "err", err)
	}
}
