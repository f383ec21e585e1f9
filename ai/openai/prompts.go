package openai

import "fmt"

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "type": {"type": "string", "description": "e.g., Person, Location, Concept, Event"}
        },
        "required": ["name", "type"]
      }
    },
    "relationships": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "source": {"type": "string", "description": "Must match an entity name"},
          "target": {"type": "string", "description": "Must match an entity name"},
          "relation": {"type": "string", "description": "e.g., lives in, works on, happened at"}
        },
        "required": ["source", "target", "relation"]
      }
    },
    "vectorCoordinates": {
      "type": "object",
      "description": "Abstract 2D coordinates representing semantic meaning. Scale -100 to 100.",
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"},
        "category": {"type": "string", "description": "High level cluster name"}
      }
    },
    "summary": {"type": "string"}
  },
  "required": ["entities", "relationships", "vectorCoordinates", "summary"]
}`

const extractionPromptTemplate = `You are the extraction stage of the ShadowSync context engine. Analyze the user input,
extract key entities and the relationships between them for a knowledge graph, and generate
pseudo-vector coordinates between -100 and 100 based on its semantic meaning.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Relationship source and target must match an entity name exactly.
- Similar topics should receive nearby coordinates.
- If nothing can be extracted, return empty arrays and a short summary.
- The JSON must parse without errors; no trailing commas and no extraneous text outside the object.

Example:
Input: "Met Bob at the Berlin conference, he works on vector databases."
Output:
{
  "entities": [
    {"name":"Bob","type":"Person"},
    {"name":"Berlin conference","type":"Event"},
    {"name":"vector databases","type":"Concept"}
  ],
  "relationships": [
    {"source":"Bob","target":"Berlin conference","relation":"attended"},
    {"source":"Bob","target":"vector databases","relation":"works on"}
  ],
  "vectorCoordinates": {"x":42,"y":-18,"category":"Work"},
  "summary": "Met Bob, who works on vector databases, at a Berlin conference."
}`

const agentSystemPrompt = `You are ShadowSync, an AI with persistent distributed memory.
Use the provided CONTEXT LOG to answer the user's query.
If the answer isn't in the context, admit it but try to infer from what you know.
Be concise, technical, and helpful.`

// buildSystemPrompt creates the extraction system prompt with the schema embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate, extractionResponseSchema)
}

// buildExtractionInput wraps the user text for the extraction call.
func buildExtractionInput(text string) string {
	return fmt.Sprintf("Input: %q", text)
}

// buildQueryInput lays out the context log followed by the question.
func buildQueryInput(query, contextSummary string) string {
	return fmt.Sprintf("CONTEXT LOG:\n%s\n\nUSER QUERY:\n%s", contextSummary, query)
}
