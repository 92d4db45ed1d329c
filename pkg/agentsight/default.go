package agentsight

import "sync"

var (
	defaultMu      sync.Mutex
	defaultTracker *Tracker
)

// Init creates the process-wide default tracker. Calling it again replaces
// the previous default.
func Init(opts ...Option) (*Tracker, error) {
	t, err := NewTracker(opts...)
	if err != nil {
		return nil, err
	}
	defaultMu.Lock()
	defaultTracker = t
	defaultMu.Unlock()
	return t, nil
}

// Default returns the tracker created by Init, or nil before Init is
// called.
func Default() *Tracker {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultTracker
}
