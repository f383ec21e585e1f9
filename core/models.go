package core

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier for graph nodes.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID as fixed-width lowercase hex.
func (id ID) String() string {
	s := strconv.FormatUint(uint64(id), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}

// MarshalText keeps IDs exact for JSON consumers that cannot hold 64-bit integers.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the hex form written by MarshalText.
func (id *ID) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 16, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", text, err)
	}
	*id = ID(v)
	return nil
}

// NodeType classifies a knowledge graph node.
type NodeType string

const (
	NodeTypePerson  NodeType = "person"
	NodeTypeEvent   NodeType = "event"
	NodeTypeConcept NodeType = "concept"
	NodeTypeEntity  NodeType = "entity"
)

// Node is a vertex of the knowledge graph. Label is its identity key.
type Node struct {
	ID        ID        `json:"id"`
	Label     string    `json:"label"`
	Type      NodeType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNode builds a node whose ID is derived from its label.
func NewNode(label string, nodeType NodeType, createdAt time.Time) *Node {
	return &Node{
		ID:        IDFromContent(label),
		Label:     label,
		Type:      nodeType,
		CreatedAt: createdAt,
	}
}

// Edge is a directed, labeled relationship between two node labels.
// Endpoints are not required to exist as nodes.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// VectorPoint is a 2D semantic projection of one ingested text.
type VectorPoint struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Content  string  `json:"content"`
	Category string  `json:"category"`
}

// EventType identifies the pipeline stage that produced an event.
type EventType string

const (
	EventCapture  EventType = "CAPTURE"
	EventProcess  EventType = "PROCESS"
	EventEmbed    EventType = "EMBED"
	EventStore    EventType = "STORE"
	EventSync     EventType = "SYNC"
	EventRetrieve EventType = "RETRIEVE"
	EventSystem   EventType = "SYSTEM"
)

// EventTypes lists every valid event type.
var EventTypes = []EventType{
	EventCapture,
	EventProcess,
	EventEmbed,
	EventStore,
	EventSync,
	EventRetrieve,
	EventSystem,
}

// EventStatus is the reporting state of an event. Only EventStatusSuccess is
// ever assigned today; the other values are reserved for staged reporting.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusProcessing EventStatus = "processing"
	EventStatusSuccess    EventStatus = "success"
)

// EventLogCapacity is the maximum number of events retained by the event log.
const EventLogCapacity = 50

// Event is an immutable record of one pipeline or system occurrence.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	Status    EventStatus `json:"status"`
}

// HealthSnapshot holds synthetic operational metrics.
type HealthSnapshot struct {
	Consistency       float64 `json:"consistency"`
	LatencyMs         int     `json:"latencyMs"`
	ReplicationFactor int     `json:"replicationFactor"`
	StorageMB         float64 `json:"storageMB"`
	BufferPercent     int     `json:"bufferPercent"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser   ChatRole = "user"
	ChatRoleAgent  ChatRole = "agent"
	ChatRoleSystem ChatRole = "system"
)

// ChatMessage is one entry of the agent transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
