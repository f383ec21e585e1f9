// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package shadowsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/shadowsync/agent"
	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/health"
	"github.com/poiesic/shadowsync/ingestion"
	"github.com/poiesic/shadowsync/storage"
	"github.com/poiesic/shadowsync/storage/badger"
)

// DefaultMeshDelay is how long after boot the mesh reports itself active.
const DefaultMeshDelay = 1200 * time.Millisecond

// Boot event messages.
const (
	InitializedMessage  = "ShadowSync Core initialized."
	EstablishingMessage = "Establishing P2P mesh connection..."
	MeshActiveMessage   = "Mesh active. 3 nodes connected."
)

// Status is a point-in-time view of the engine for dashboards.
type Status struct {
	Nodes             int                 `json:"nodes"`
	Edges             int                 `json:"edges"`
	Vectors           int                 `json:"vectors"`
	Events            int                 `json:"events"`
	Busy              bool                `json:"busy"`
	Health            core.HealthSnapshot `json:"health"`
	BufferLevel       string              `json:"bufferLevel"`
	CredentialMissing bool                `json:"credentialMissing"`
}

// Engine owns the stores, the AI provider, the ingestion pipeline, the agent
// and the health simulator. All stores live in memory for the life of the engine.
type Engine struct {
	backend    *badger.Backend
	graphRepo  storage.GraphRepository
	vectorRepo storage.VectorRepository
	eventRepo  storage.EventRepository
	provider   ai.AIProvider
	simulator  *health.Simulator
	metrics    *health.Metrics
	pipeline   *ingestion.Pipeline
	agent      *agent.Agent
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig         *ai.Config
	provider         ai.AIProvider
	pipelineOpts     []ingestion.Option
	simulatorOpts    []health.Option
	meshDelay        time.Duration
	metricsNamespace string
	logger           *slog.Logger
}

// WithAIConfig sets the provider configuration. Ignored when WithProvider is used.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a ready provider. The engine closes it on Close.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithPipelineOptions passes options through to the ingestion pipeline.
func WithPipelineOptions(opts ...ingestion.Option) EngineOption {
	return func(o *engineOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithSimulatorOptions passes options through to the health simulator.
func WithSimulatorOptions(opts ...health.Option) EngineOption {
	return func(o *engineOptions) {
		o.simulatorOpts = append(o.simulatorOpts, opts...)
	}
}

// WithMeshDelay sets the delay before the mesh-active boot event.
func WithMeshDelay(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.meshDelay = d
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine wires every component and records the boot events. The heartbeat
// does not run until Start.
func NewEngine(ctx context.Context, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:         ai.DefaultConfig(),
		meshDelay:        DefaultMeshDelay,
		metricsNamespace: "shadowsync",
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = NewProvider(ctx, options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	e := &Engine{
		provider: provider,
		logger:   logger.With("component", "engine"),
	}
	if err := e.open(options); err != nil {
		e.closeAll()
		return nil, err
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.boot(options.meshDelay)
	return e, nil
}

func (e *Engine) open(options *engineOptions) error {
	backend, err := badger.OpenBackend("", true)
	if err != nil {
		return err
	}
	e.backend = backend

	graphRepo, err := badger.NewGraphRepository(backend)
	if err != nil {
		return err
	}
	e.graphRepo = graphRepo

	vectorRepo, err := badger.NewVectorRepository(backend)
	if err != nil {
		return err
	}
	e.vectorRepo = vectorRepo

	eventRepo, err := badger.NewEventRepository(backend)
	if err != nil {
		return err
	}
	e.eventRepo = eventRepo

	simulatorOpts := append([]health.Option{health.WithLogger(options.logger)}, options.simulatorOpts...)
	if e.simulator, err = health.NewSimulator(simulatorOpts...); err != nil {
		return err
	}
	e.metrics = health.NewMetrics(options.metricsNamespace, e.simulator)

	pipelineOpts := append([]ingestion.Option{
		ingestion.WithLogger(options.logger),
		ingestion.WithMonitor(ingestion.Monitors{e.simulator, e.metrics}),
	}, options.pipelineOpts...)
	if e.pipeline, err = ingestion.NewPipeline(e.graphRepo, e.vectorRepo, e.eventRepo, e.provider.Extractor(), pipelineOpts...); err != nil {
		return err
	}

	e.agent, err = agent.NewAgent(e.graphRepo, e.vectorRepo, e.eventRepo, e.provider.Responder(),
		agent.WithLogger(options.logger),
		agent.WithMonitor(e.metrics),
	)
	return err
}

func (e *Engine) boot(meshDelay time.Duration) {
	e.record(core.EventSystem, InitializedMessage)
	e.record(core.EventSync, EstablishingMessage)

	if e.provider.CredentialMissing() {
		e.logger.Warn("no API key configured; ingestion and agent queries will fail")
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		timer := time.NewTimer(meshDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
			e.record(core.EventSync, MeshActiveMessage)
		case <-e.ctx.Done():
		}
	}()
}

func (e *Engine) record(eventType core.EventType, message string) {
	if _, err := e.eventRepo.Record(context.Background(), eventType, message); err != nil {
		e.logger.Error("error recording event", "type", eventType, "err", err)
	}
}

// Start runs the health heartbeat.
func (e *Engine) Start() error {
	return e.simulator.Start()
}

// Close stops the heartbeat, cancels pending delayed events and releases
// every resource. The engine should not be used after calling Close.
func (e *Engine) Close() error {
	e.cancel()
	e.wg.Wait()
	return e.closeAll()
}

func (e *Engine) closeAll() error {
	var errs []error
	if e.simulator != nil {
		if err := e.simulator.Stop(); err != nil {
			e.logger.Error("error stopping heartbeat", "err", err)
			errs = append(errs, err)
		}
	}
	if e.pipeline != nil {
		e.pipeline.Release()
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
		}
	}
	for _, repo := range []storage.Repository{e.eventRepo, e.vectorRepo, e.graphRepo} {
		if repo == nil {
			continue
		}
		if err := repo.Close(); err != nil {
			e.logger.Error("error closing repository", "err", err)
			errs = append(errs, err)
		}
	}
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ingest hands text to the pipeline. See ingestion.Pipeline.Ingest.
func (e *Engine) Ingest(ctx context.Context, text string) error {
	return e.pipeline.Ingest(ctx, text)
}

// Ask queries the agent. See agent.Agent.Ask.
func (e *Engine) Ask(ctx context.Context, query string) (core.ChatMessage, error) {
	return e.agent.Ask(ctx, query)
}

// CredentialMissing reports whether the provider has no API key.
func (e *Engine) CredentialMissing() bool {
	return e.provider.CredentialMissing()
}

// Busy reports whether any ingestion is in flight.
func (e *Engine) Busy() bool {
	return e.pipeline.Busy()
}

// Status collects counts, health and the credential state.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	nodes, err := e.graphRepo.NodeCount(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := e.graphRepo.EdgeCount(ctx)
	if err != nil {
		return nil, err
	}
	vectors, err := e.vectorRepo.PointCount(ctx)
	if err != nil {
		return nil, err
	}
	events, err := e.eventRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := e.simulator.Snapshot()
	return &Status{
		Nodes:             nodes,
		Edges:             edges,
		Vectors:           vectors,
		Events:            events,
		Busy:              e.pipeline.Busy(),
		Health:            snapshot,
		BufferLevel:       health.Level(snapshot.BufferPercent),
		CredentialMissing: e.provider.CredentialMissing(),
	}, nil
}

// GraphRepository returns the knowledge graph store.
func (e *Engine) GraphRepository() storage.GraphRepository {
	return e.graphRepo
}

// VectorRepository returns the vector point store.
func (e *Engine) VectorRepository() storage.VectorRepository {
	return e.vectorRepo
}

// EventRepository returns the bounded event log.
func (e *Engine) EventRepository() storage.EventRepository {
	return e.eventRepo
}

// Pipeline returns the ingestion pipeline.
func (e *Engine) Pipeline() *ingestion.Pipeline {
	return e.pipeline
}

// Agent returns the query agent and its transcript.
func (e *Engine) Agent() *agent.Agent {
	return e.agent
}

// Simulator returns the health simulator.
func (e *Engine) Simulator() *health.Simulator {
	return e.simulator
}

// Metrics returns the Prometheus collectors exposed on /metrics.
func (e *Engine) Metrics() *health.Metrics {
	return e.metrics
}
