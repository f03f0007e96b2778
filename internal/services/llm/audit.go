package llm

import (
	"sync"
	"time"

	"github.com/ternarybob/nuntium/internal/interfaces"
)

// AttemptOutcome classifies how one analysis attempt ended.
type AttemptOutcome string

const (
	OutcomeSuccess       AttemptOutcome = "success"
	OutcomeRateLimited   AttemptOutcome = "rate_limited"
	OutcomeFormatFailure AttemptOutcome = "format_failure"
	OutcomeTransport     AttemptOutcome = "transport_error"
	OutcomeClientError   AttemptOutcome = "client_error"
)

// AttemptRecord is one audited analysis attempt. API keys are never
// recorded, only their source.
type AttemptRecord struct {
	Time      time.Time                  `json:"time"`
	Provider  interfaces.Provider        `json:"provider"`
	Model     string                     `json:"model"`
	KeySource interfaces.CandidateSource `json:"keySource"`
	Outcome   AttemptOutcome             `json:"outcome"`
	Detail    string                     `json:"detail,omitempty"`
}

const auditCapacity = 64

// AuditLog is a fixed-size ring of recent analysis attempts, exposed
// through the status endpoint.
type AuditLog struct {
	mu      sync.RWMutex
	records []AttemptRecord
	next    int
	full    bool
}

// NewAuditLog creates an empty audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{records: make([]AttemptRecord, auditCapacity)}
}

// Add appends a record, evicting the oldest when full.
func (a *AuditLog) Add(record AttemptRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records[a.next] = record
	a.next = (a.next + 1) % len(a.records)
	if a.next == 0 {
		a.full = true
	}
}

// Recent returns records newest first.
func (a *AuditLog) Recent() []AttemptRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()

	count := a.next
	if a.full {
		count = len(a.records)
	}
	out := make([]AttemptRecord, 0, count)
	for i := 1; i <= count; i++ {
		idx := (a.next - i + len(a.records)) % len(a.records)
		out = append(out, a.records[idx])
	}
	return out
}
