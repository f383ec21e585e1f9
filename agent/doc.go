// Package agent answers questions about what ShadowSync has learned.
//
// An Agent builds a context summary from the graph labels and the most recent
// vector points, hands it to an ai.Responder together with the question and
// keeps the resulting conversation as a transcript. Each query is bracketed
// by two RETRIEVE events in the event log.
package agent
