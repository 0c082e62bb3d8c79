package metrics

import (
	"sync"
	"time"
)

// OperationMetric is a latency summary for one named ledger operation,
// surfaced by the console stats command.
type OperationMetric struct {
	Count         int
	Errors        int
	AvgLatencyMs  int64
	MaxLatencyMs  int64
	LastLatencyMs int64
}

type opMetric struct {
	count   int
	errors  int
	totalNs int64
	maxNs   int64
	lastNs  int64
}

// OpsState tracks per-operation latency in process memory.
type OpsState struct {
	mu            sync.RWMutex
	ops           map[string]*opMetric
	lastUpdatedAt time.Time
}

func NewOpsState() *OpsState {
	return &OpsState{ops: map[string]*opMetric{}}
}

func (s *OpsState) RecordOp(operation string, started time.Time) {
	latency := time.Since(started).Nanoseconds()
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ops[operation]
	if !ok {
		m = &opMetric{}
		s.ops[operation] = m
	}
	m.count++
	m.totalNs += latency
	m.lastNs = latency
	if latency > m.maxNs {
		m.maxNs = latency
	}
	s.lastUpdatedAt = time.Now().UTC()
}

func (s *OpsState) RecordOpError(operation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ops[operation]
	if !ok {
		m = &opMetric{}
		s.ops[operation] = m
	}
	m.errors++
	s.lastUpdatedAt = time.Now().UTC()
}

func (s *OpsState) Snapshot() (map[string]OperationMetric, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]OperationMetric, len(s.ops))
	for name, m := range s.ops {
		avg := int64(0)
		if m.count > 0 {
			avg = m.totalNs / int64(m.count) / int64(time.Millisecond)
		}
		out[name] = OperationMetric{
			Count:         m.count,
			Errors:        m.errors,
			AvgLatencyMs:  avg,
			MaxLatencyMs:  m.maxNs / int64(time.Millisecond),
			LastLatencyMs: m.lastNs / int64(time.Millisecond),
		}
	}
	return out, s.lastUpdatedAt
}
