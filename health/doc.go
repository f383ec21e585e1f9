// Package health simulates the operational telemetry shown next to the stores.
//
// A Simulator owns one core.HealthSnapshot. A gocron job ticks it on a fixed
// heartbeat, and the ingestion pipeline drives it through three triggers:
// IngestStarted spikes the memory buffer, IngestFinished ends the busy
// period, and StoreChanged recomputes the storage figure from the store sizes.
// The figures are illustrative. Nothing here feeds back into the stores.
//
// Metrics exposes the snapshot and ingestion counters on a private
// prometheus registry.
package health
