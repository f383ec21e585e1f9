// Package ingestion turns free text into knowledge.
//
// A Pipeline run captures the text, asks an ai.Extractor for entities,
// relationships and a 2D coordinate, then merges the result into the graph
// and vector repositories. Every stage is narrated to the event log:
//
//	CAPTURE  Received context: "<first 30 runes>..."
//	PROCESS  Normalizing input data structure...
//	PROCESS  Context extracted successfully.
//	STORE    Updated Knowledge Graph: +N nodes.
//	EMBED    Generated Vector [x.x, y.y]
//	SYNC     Replicating state to connected agents...
//
// STORE counts the entities of this extraction, repeated labels included.
// Graph and vector writes share one storage transaction, so a run stores all
// of its facts or none. A failed extraction, or a failed write, records a
// failure PROCESS event and leaves the stores untouched. Runs execute on an ants worker pool; Ingest returns as
// soon as the run is accepted and reports problems through the event log only.
package ingestion
