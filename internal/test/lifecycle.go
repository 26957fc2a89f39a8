package test

import (
	"go.uber.org/fx"
)

// LifecycleRecorder collects hooks registered against it so tests can run
// OnStart and OnStop by hand.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

// Append records the hook without executing it.
func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}

// ShutdownerStub signals on Called when the app requests termination.
type ShutdownerStub struct {
	Called chan struct{}
}

// Shutdown reports the termination request to the test.
func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	if s.Called != nil {
		select {
		case s.Called <- struct{}{}:
		default:
		}
	}
	return nil
}
