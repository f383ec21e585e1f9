package gemini

import "google.golang.org/genai"

// extractionSchema is the response schema sent with every extraction call.
var extractionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"entities": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name": {Type: genai.TypeString},
					"type": {Type: genai.TypeString, Description: "e.g., Person, Location, Concept, Event"},
				},
			},
		},
		"relationships": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"source":   {Type: genai.TypeString, Description: "Must match an entity name"},
					"target":   {Type: genai.TypeString, Description: "Must match an entity name"},
					"relation": {Type: genai.TypeString, Description: "e.g., lives in, works on, happened at"},
				},
			},
		},
		"vectorCoordinates": {
			Type:        genai.TypeObject,
			Description: "Abstract 2D coordinates representing semantic meaning for visualization. Scale -100 to 100.",
			Properties: map[string]*genai.Schema{
				"x":        {Type: genai.TypeNumber},
				"y":        {Type: genai.TypeNumber},
				"category": {Type: genai.TypeString, Description: "High level cluster name"},
			},
		},
		"summary": {Type: genai.TypeString},
	},
	Required: []string{"entities", "relationships", "vectorCoordinates", "summary"},
}

const extractionPrompt = `Analyze this user input for the ShadowSync Context Engine.
Extract key entities, relationships for a knowledge graph, and generate pseudo-vector coordinates (-100 to 100) based on semantic meaning.
Input: %q`

const agentInstruction = `You are ShadowSync, an AI with persistent distributed memory.
Use the provided CONTEXT LOG to answer the user's query.
If the answer isn't in the context, admit it but try to infer from what you know.
Be concise, technical, and helpful.`

const queryTemplate = "CONTEXT LOG:\n%s\n\nUSER QUERY:\n%s"
