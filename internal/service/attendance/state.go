package attendance

import (
	"sync"

	"go.uber.org/zap"
)

type State string

const (
	StatePending         State = "Pending"
	StateSessionStarting State = "SessionStarting"
	StateLoggingIn       State = "LoggingIn"
	StateExtracting      State = "Extracting"
	StateAggregating     State = "Aggregating"
	StateSucceeded       State = "Succeeded"
	StateFailed          State = "Failed"
	StateTimedOut        State = "TimedOut"
)

func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateTimedOut
}

// tracker 记录一次抓取的状态. 超时后 worker 可能还在执行, 终态之后的变化一律忽略.
type tracker struct {
	mu     sync.Mutex
	state  State
	logger *zap.Logger
}

func newTracker(logger *zap.Logger) *tracker {
	return &tracker{state: StatePending, logger: logger}
}

func (t *tracker) set(next State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return
	}
	t.logger.Debug("状态变化", zap.String("from", string(t.state)), zap.String("to", string(next)))
	t.state = next
}

func (t *tracker) get() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
