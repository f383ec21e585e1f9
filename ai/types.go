package ai

import (
	"strings"
)

// DefaultCategory is assigned to coordinates that arrive without a category.
const DefaultCategory = "General"

// Canned replies returned by Responder implementations.
const (
	MissingCredentialReply = "I cannot connect to the intelligence layer (Missing API Key)."
	ErrorReply             = "Error querying the agent."
	EmptyReply             = "No response generated."
)

// ExtractedEntity is a named thing found in text. Type is free text such as
// "Person", "Location" or "Event".
type ExtractedEntity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ExtractedRelationship links two entity names.
type ExtractedRelationship struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Coordinate is a pseudo-embedding on a nominal [-100, 100] plane.
type Coordinate struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Category string  `json:"category"`
}

// Extraction is the structured result of analyzing one text.
type Extraction struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
	Coordinate    *Coordinate             `json:"vectorCoordinates"`
	Summary       string                  `json:"summary"`
}

// Normalize fills defaults for anything the model left out. Entities without
// a name are dropped since a node cannot be keyed by an empty label.
func (e *Extraction) Normalize() {
	if e.Entities == nil {
		e.Entities = []ExtractedEntity{}
	}
	if e.Relationships == nil {
		e.Relationships = []ExtractedRelationship{}
	}
	if e.Coordinate == nil {
		e.Coordinate = &Coordinate{}
	}
	if strings.TrimSpace(e.Coordinate.Category) == "" {
		e.Coordinate.Category = DefaultCategory
	}

	entities := e.Entities[:0]
	for _, entity := range e.Entities {
		if strings.TrimSpace(entity.Name) == "" {
			continue
		}
		entities = append(entities, entity)
	}
	e.Entities = entities
}

// ReplyFor maps the outcome of a query call onto displayable text.
func ReplyFor(text string, err error) string {
	switch {
	case err != nil && isMissingCredential(err):
		return MissingCredentialReply
	case err != nil:
		return ErrorReply
	case strings.TrimSpace(text) == "":
		return EmptyReply
	default:
		return text
	}
}
