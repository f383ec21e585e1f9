package health

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/poiesic/shadowsync/core"
)

const (
	// DefaultInterval is the heartbeat period.
	DefaultInterval = 800 * time.Millisecond

	idleLatencyMs   = 24
	busyLatencyMs   = 65
	bufferCeiling   = 98
	bufferFloor     = 8
	bufferSpike     = 25
	baseStorageMB   = 1.24
	nodeStorageMB   = 0.015
	vectorStorageMB = 0.005
)

// Buffer level bands.
const (
	LevelLow      = "low"
	LevelElevated = "elevated"
	LevelCritical = "critical"
)

var (
	// ErrInvalidInterval indicates a non-positive heartbeat interval.
	ErrInvalidInterval = errors.New("heartbeat interval must be positive")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("simulator already started")
)

// DefaultSnapshot returns the figures reported before the first tick.
func DefaultSnapshot() core.HealthSnapshot {
	return core.HealthSnapshot{
		Consistency:       99.999,
		LatencyMs:         idleLatencyMs,
		ReplicationFactor: 3,
		StorageMB:         baseStorageMB,
		BufferPercent:     12,
	}
}

// Level classifies a buffer percentage: above 80 is critical, above 50 elevated.
func Level(bufferPercent int) string {
	switch {
	case bufferPercent > 80:
		return LevelCritical
	case bufferPercent > 50:
		return LevelElevated
	default:
		return LevelLow
	}
}

// Simulator maintains the health snapshot. All methods are safe for
// concurrent use and never block on anything but its own mutex.
type Simulator struct {
	mu       sync.Mutex
	snapshot core.HealthSnapshot
	inFlight int
	random   func() float64

	interval  time.Duration
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator) error

// WithInterval sets the heartbeat period.
func WithInterval(d time.Duration) Option {
	return func(s *Simulator) error {
		if d <= 0 {
			return ErrInvalidInterval
		}
		s.interval = d
		return nil
	}
}

// WithRand sets the random source used by ticks.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) error {
		if r == nil {
			return errors.New("random source cannot be nil")
		}
		s.random = r.Float64
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) error {
		s.logger = logger
		return nil
	}
}

// NewSimulator creates a simulator holding DefaultSnapshot. The heartbeat
// does not run until Start.
func NewSimulator(opts ...Option) (*Simulator, error) {
	s := &Simulator{
		snapshot: DefaultSnapshot(),
		random:   rand.Float64,
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "health")
	return s, nil
}

// Snapshot returns a copy of the current figures.
func (s *Simulator) Snapshot() core.HealthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Busy reports whether any ingestion is in flight.
func (s *Simulator) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// Tick advances latency, buffer and consistency by one heartbeat.
func (s *Simulator) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	busy := s.inFlight > 0

	base := idleLatencyMs
	if busy {
		base = busyLatencyMs
	}
	jitter := int(math.Floor(s.random()*15)) - 5
	s.snapshot.LatencyMs = base + jitter

	buffer := float64(s.snapshot.BufferPercent)
	if busy {
		buffer = math.Min(bufferCeiling, buffer+s.random()*15)
	} else {
		buffer = math.Max(bufferFloor, buffer-s.random()*5)
	}
	s.snapshot.BufferPercent = int(math.Floor(buffer))

	s.snapshot.Consistency = round(100-s.random()*0.005, 4)
}

// StoreChanged recomputes StorageMB from the store sizes.
func (s *Simulator) StoreChanged(nodes, vectors int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.StorageMB = round(baseStorageMB+nodeStorageMB*float64(nodes)+vectorStorageMB*float64(vectors), 3)
}

// IngestStarted marks an ingestion in flight and spikes the buffer.
func (s *Simulator) IngestStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	s.snapshot.BufferPercent = min(100, s.snapshot.BufferPercent+bufferSpike)
}

// IngestFinished ends one in-flight ingestion, whatever its outcome.
func (s *Simulator) IngestFinished(error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight > 0 {
		s.inFlight--
	}
}

// Start runs the heartbeat on a gocron scheduler.
func (s *Simulator) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return ErrAlreadyStarted
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.Tick),
		gocron.WithName("health-heartbeat"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule heartbeat: %w", err)
	}

	scheduler.Start()
	s.scheduler = scheduler
	s.logger.Debug("heartbeat started", "interval", s.interval)
	return nil
}

// Stop shuts the heartbeat down. Safe to call when not started.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	scheduler := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if scheduler == nil {
		return nil
	}
	s.logger.Debug("heartbeat stopped")
	return scheduler.Shutdown()
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
