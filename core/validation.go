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


package core

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// ClassifyNodeType maps a free-text entity type reported by an extractor onto
// a NodeType. Matching is a case-insensitive substring test: anything mentioning
// "person" is a person, anything mentioning "event" is an event, the rest are concepts.
func ClassifyNodeType(label string) NodeType {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "person"):
		return NodeTypePerson
	case strings.Contains(lower, "event"):
		return NodeTypeEvent
	default:
		return NodeTypeConcept
	}
}

// ValidateNode validates a Node according to domain rules.
//
// Validation rules:
//   - Label must not be empty
//   - Type must be one of the known node types
func ValidateNode(node *Node) error {
	if node == nil {
		return fmt.Errorf("%w: node is nil", ErrInvalidNode)
	}

	if node.Label == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNode, ErrEmptyLabel)
	}

	switch node.Type {
	case NodeTypePerson, NodeTypeEvent, NodeTypeConcept, NodeTypeEntity:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidNode, ErrInvalidNodeType, node.Type)
	}

	return nil
}

// ValidateEdge rejects nil edges only. Empty or dangling endpoints are legal.
func ValidateEdge(edge *Edge) error {
	if edge == nil {
		return fmt.Errorf("%w: edge is nil", ErrInvalidEdge)
	}
	return nil
}

// ValidateEventType validates that an EventType has a known value.
func ValidateEventType(eventType EventType) error {
	if !slices.Contains(EventTypes, eventType) {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, eventType)
	}
	return nil
}

// Preview returns at most limit runes of text followed by an ellipsis.
func Preview(text string, limit int) string {
	if utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		text = string(runes[:limit])
	}
	return text + "..."
}
