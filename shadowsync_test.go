package shadowsync

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/ai/mock"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append([]EngineOption{
		WithProvider(mock.NewMockProvider()),
		WithMeshDelay(10 * time.Millisecond),
		WithPipelineOptions(ingestion.WithStageDelay(time.Millisecond), ingestion.WithSyncDelay(time.Millisecond)),
	}, opts...)
	engine, err := NewEngine(context.Background(), opts...)
	require.NoError(t, err)
	return engine
}

func messages(t *testing.T, engine *Engine) []string {
	t.Helper()
	events, err := engine.EventRepository().List(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i].Message)
	}
	return out
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("mock", func(t *testing.T) {
		provider, err := NewProvider(ctx, ai.NewConfig(ai.WithProvider(ai.ProviderMock)))
		require.NoError(t, err)
		assert.False(t, provider.CredentialMissing())
	})

	t.Run("gemini without key fails closed", func(t *testing.T) {
		provider, err := NewProvider(ctx, ai.DefaultConfig())
		require.NoError(t, err)
		defer provider.Close()
		assert.True(t, provider.CredentialMissing())

		_, err = provider.Extractor().Extract(ctx, "Bob met Alice")
		assert.ErrorIs(t, err, ai.ErrMissingCredential)
		assert.Equal(t, ai.MissingCredentialReply, provider.Responder().Respond(ctx, "hi", ""))
	})

	t.Run("openai without key fails closed", func(t *testing.T) {
		provider, err := NewProvider(ctx, ai.NewConfig(ai.WithProvider(ai.ProviderOpenAI)))
		require.NoError(t, err)
		defer provider.Close()
		assert.True(t, provider.CredentialMissing())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewProvider(ctx, ai.NewConfig(ai.WithProvider("watson")))
		assert.ErrorIs(t, err, ai.ErrUnknownProvider)
	})
}

func TestNewEngine_BootEvents(t *testing.T) {
	engine := newTestEngine(t)
	defer engine.Close()

	assert.Equal(t, []string{InitializedMessage, EstablishingMessage}, messages(t, engine))

	assert.Eventually(t, func() bool {
		msgs := messages(t, engine)
		return len(msgs) == 3 && msgs[2] == MeshActiveMessage
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngine_CloseCancelsMeshEvent(t *testing.T) {
	engine := newTestEngine(t, WithMeshDelay(time.Hour))

	done := make(chan error, 1)
	go func() { done <- engine.Close() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("close waited for the mesh event")
	}
}

func TestEngine_CredentialMissing(t *testing.T) {
	engine, err := NewEngine(context.Background(), WithAIConfig(ai.DefaultConfig()), WithMeshDelay(time.Millisecond))
	require.NoError(t, err)
	defer engine.Close()

	assert.True(t, engine.CredentialMissing())

	status, err := engine.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.CredentialMissing)
}

func TestEngine_IngestAndAsk(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockExtractor().ExtractFunc = func(context.Context, string) (*ai.Extraction, error) {
		return &ai.Extraction{
			Entities:      []ai.ExtractedEntity{{Name: "Bob", Type: "Person"}, {Name: "Launch", Type: "Event"}},
			Relationships: []ai.ExtractedRelationship{{Source: "Bob", Target: "Launch", Relation: "attended"}},
			Coordinate:    &ai.Coordinate{X: 40, Y: -20, Category: "Work"},
		}, nil
	}
	engine := newTestEngine(t, WithProvider(provider))
	defer engine.Close()
	ctx := context.Background()

	require.NoError(t, engine.Ingest(ctx, "Bob attended the launch."))
	engine.Pipeline().Wait()

	status, err := engine.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Nodes)
	assert.Equal(t, 1, status.Edges)
	assert.Equal(t, 1, status.Vectors)
	assert.False(t, status.Busy)
	assert.False(t, status.CredentialMissing)
	assert.Equal(t, 1.275, status.Health.StorageMB)

	reply, err := engine.Ask(ctx, "Who went to the launch?")
	require.NoError(t, err)
	assert.Equal(t, core.ChatRoleAgent, reply.Role)
	assert.Equal(t, "Entities: Bob, Launch\nRecent Memories: Bob attended the launch.",
		provider.GetMockResponder().LastSummary())

	assert.Len(t, engine.Agent().Messages(), 3)
}

func TestEngine_Start(t *testing.T) {
	engine := newTestEngine(t)
	defer engine.Close()

	require.NoError(t, engine.Start())
	assert.Error(t, engine.Start(), "heartbeat cannot start twice")
}
