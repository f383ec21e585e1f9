package agent

// QueryMonitor provides hooks to observe agent queries.
type QueryMonitor interface {
	QueryStarted(query string)
	QueryFinished(reply string)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) QueryStarted(_ string)  {}
func (n *noopMonitor) QueryFinished(_ string) {}
