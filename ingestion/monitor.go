package ingestion

// Monitor provides hooks to observe ingestion runs.
// Hooks are called from worker goroutines and must not block.
type Monitor interface {
	// IngestStarted fires once per accepted run, before the CAPTURE event.
	IngestStarted()
	// StoreChanged fires after a successful run with the new store sizes.
	StoreChanged(nodes, vectors int)
	// IngestFinished fires once per run, whatever its outcome. err is nil on success.
	IngestFinished(err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) IngestStarted()         {}
func (n *noopMonitor) StoreChanged(_, _ int)  {}
func (n *noopMonitor) IngestFinished(_ error) {}

// Monitors fans every hook out to each monitor in order.
type Monitors []Monitor

var _ Monitor = Monitors(nil)

func (ms Monitors) IngestStarted() {
	for _, m := range ms {
		m.IngestStarted()
	}
}

func (ms Monitors) StoreChanged(nodes, vectors int) {
	for _, m := range ms {
		m.StoreChanged(nodes, vectors)
	}
}

func (ms Monitors) IngestFinished(err error) {
	for _, m := range ms {
		m.IngestFinished(err)
	}
}
