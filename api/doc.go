// Package api serves the engine over HTTP as JSON.
//
//	POST /api/ingest          accept text for ingestion (202)
//	GET  /api/graph           nodes and relationships
//	GET  /api/vectors         vector points
//	GET  /api/events          event log, newest first
//	GET  /api/health          health snapshot and buffer level
//	GET  /api/status          counts, health and credential state
//	POST /api/agent/ask       ask the agent a question
//	GET  /api/agent/messages  agent transcript
//	GET  /metrics             Prometheus exposition
package api
