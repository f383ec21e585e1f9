package agent

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/storage"
)

const (
	// DefaultRecentMemories is how many recent points feed the context summary.
	DefaultRecentMemories = 5

	// GreetingMessage seeds every transcript.
	GreetingMessage = "ShadowSync Agent v2.5 Online. Waiting for query..."

	RequestingMessage = "Agent requesting memory access..."
	DeliveredMessage  = "Agent response delivered."
)

// Agent answers free-text questions against the stored knowledge.
type Agent struct {
	graphRepository  storage.GraphRepository
	vectorRepository storage.VectorRepository
	eventRepository  storage.EventRepository
	responder        ai.Responder
	monitor          QueryMonitor
	recentMemories   int
	now              func() time.Time
	logger           *slog.Logger

	mu         sync.Mutex
	transcript []core.ChatMessage
}

// Option configures an Agent.
type Option func(*Agent) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithMonitor sets the hooks notified about each query.
func WithMonitor(monitor QueryMonitor) Option {
	return func(a *Agent) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		a.monitor = monitor
		return nil
	}
}

// WithRecentMemories sets how many recent points the summary lists.
func WithRecentMemories(n int) Option {
	return func(a *Agent) error {
		if n < 0 {
			n = 0
		}
		a.recentMemories = n
		return nil
	}
}

// NewAgent creates an agent whose transcript holds only the greeting.
func NewAgent(
	graphRepository storage.GraphRepository,
	vectorRepository storage.VectorRepository,
	eventRepository storage.EventRepository,
	responder ai.Responder,
	opts ...Option,
) (*Agent, error) {
	if graphRepository == nil {
		return nil, ErrGraphRepositoryRequired
	}
	if vectorRepository == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if eventRepository == nil {
		return nil, ErrEventRepositoryRequired
	}
	if responder == nil {
		return nil, ErrResponderRequired
	}

	a := &Agent{
		graphRepository:  graphRepository,
		vectorRepository: vectorRepository,
		eventRepository:  eventRepository,
		responder:        responder,
		monitor:          &noopMonitor{},
		recentMemories:   DefaultRecentMemories,
		now:              time.Now,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "agent")

	a.transcript = []core.ChatMessage{a.message(core.ChatRoleSystem, GreetingMessage)}
	return a, nil
}

// Ask records query in the transcript, answers it and returns the agent's
// reply. Empty or whitespace-only queries return ErrEmptyQuery and change
// nothing. The reply is always displayable; responder failures arrive as one
// of the canned ai replies.
func (a *Agent) Ask(ctx context.Context, query string) (core.ChatMessage, error) {
	if strings.TrimSpace(query) == "" {
		return core.ChatMessage{}, ErrEmptyQuery
	}

	a.append(a.message(core.ChatRoleUser, query))
	a.monitor.QueryStarted(query)
	a.record(ctx, RequestingMessage)

	var text string
	summary, err := a.Summary(ctx)
	if err != nil {
		a.logger.Error("error building context summary", "err", err)
		text = ai.ErrorReply
	} else {
		text = a.responder.Respond(ctx, query, summary)
	}

	reply := a.message(core.ChatRoleAgent, text)
	a.append(reply)
	a.record(ctx, DeliveredMessage)
	a.monitor.QueryFinished(text)

	return reply, nil
}

// Summary returns the context summary for the current store contents.
func (a *Agent) Summary(ctx context.Context) (string, error) {
	return BuildSummary(ctx, a.graphRepository, a.vectorRepository, a.recentMemories)
}

// Messages returns a copy of the transcript, oldest first.
func (a *Agent) Messages() []core.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]core.ChatMessage(nil), a.transcript...)
}

func (a *Agent) append(msg core.ChatMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcript = append(a.transcript, msg)
}

func (a *Agent) message(role core.ChatRole, content string) core.ChatMessage {
	return core.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: a.now().UTC(),
	}
}

func (a *Agent) record(ctx context.Context, message string) {
	if _, err := a.eventRepository.Record(ctx, core.EventRetrieve, message); err != nil {
		a.logger.Error("error recording event", "err", err)
	}
}
