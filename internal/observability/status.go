package observability

import (
	"sync"
	"time"
)

// SystemStatus tracks the onboarding run currently in flight, if any.
type SystemStatus struct {
	mu            sync.RWMutex
	ActiveSession string
	ActiveStep    string
	RunsCompleted int
	RunsFailed    int
	LastHeartbeat time.Time
}

var globalStatus = &SystemStatus{
	LastHeartbeat: time.Now(),
}

// SetStatus records the session and step being executed. An empty session
// marks the process idle.
func SetStatus(session, step string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.ActiveSession = session
	globalStatus.ActiveStep = step
}

// RecordRun counts a finished run.
func RecordRun(success bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	if success {
		globalStatus.RunsCompleted++
	} else {
		globalStatus.RunsFailed++
	}
}

// Snapshot is a copy of the global status.
type Snapshot struct {
	ActiveSession string
	ActiveStep    string
	RunsCompleted int
	RunsFailed    int
	LastHeartbeat time.Time
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() Snapshot {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return Snapshot{
		ActiveSession: globalStatus.ActiveSession,
		ActiveStep:    globalStatus.ActiveStep,
		RunsCompleted: globalStatus.RunsCompleted,
		RunsFailed:    globalStatus.RunsFailed,
		LastHeartbeat: globalStatus.LastHeartbeat,
	}
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}
