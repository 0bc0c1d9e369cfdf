// Package reporting keeps a bounded history of checkout attempts and summarises it.
package reporting

import (
	"sync"
	"time"
)

// Outcome is how a pay or finalize call ended.
type Outcome string

const (
	OutcomeRedirect   Outcome = "REDIRECT"
	OutcomeNoURL      Outcome = "NO_URL"
	OutcomeFailed     Outcome = "FAILED"
	OutcomeMismatched Outcome = "MISMATCHED"
	OutcomeCancelled  Outcome = "CANCELLED"
	OutcomeConfirmed  Outcome = "CONFIRMED"
)

// LogEntry is one recorded attempt.
type LogEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	TransactionID  string    `json:"transaction_id"`
	OrderNumber    string    `json:"order_number"`
	SalesChannelID string    `json:"sales_channel_id"`
	Gateway        string    `json:"gateway"`
	Outcome        Outcome   `json:"outcome"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// DefaultCapacity is the number of attempts kept by the server.
const DefaultCapacity = 1000

// AttemptLog is a fixed-size ring of the most recent attempts.
type AttemptLog struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
}

// NewAttemptLog creates a log keeping at most capacity entries.
func NewAttemptLog(capacity int) *AttemptLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &AttemptLog{entries: make([]LogEntry, capacity)}
}

// Record stores an entry, evicting the oldest one when full. A zero timestamp is
// set to now.
func (l *AttemptLog) Record(e LogEntry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

// Entries returns the stored entries, oldest first.
func (l *AttemptLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.full {
		return append([]LogEntry(nil), l.entries[:l.next]...)
	}
	out := make([]LogEntry, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	return append(out, l.entries[:l.next]...)
}

// RetrospectiveReport summarises a set of attempts.
type RetrospectiveReport struct {
	TotalAttempts      int              `json:"total_attempts"`
	Redirected         int              `json:"redirected"`
	Failed             int              `json:"failed"`
	Cancelled          int              `json:"cancelled"`
	ByOutcome          map[Outcome]int  `json:"by_outcome"`
	AmountRedirected   map[string]int64 `json:"amount_redirected"` // minor units per currency
	ErrorBreakdown     map[string]int   `json:"error_breakdown"`
	GatewayUsage       map[string]int   `json:"gateway_usage"`
	DateFrom           time.Time        `json:"date_from"`
	DateTo             time.Time        `json:"date_to"`
	ProcessingDuration time.Duration    `json:"processing_duration"`
}

// RetrospectiveReporter generates retrospective reports from log entries.
type RetrospectiveReporter struct{}

// NewRetrospectiveReporter creates a new RetrospectiveReporter.
func NewRetrospectiveReporter() *RetrospectiveReporter {
	return &RetrospectiveReporter{}
}

// GenerateRetrospective analyzes the entries and produces a RetrospectiveReport.
func (rr *RetrospectiveReporter) GenerateRetrospective(logs []LogEntry) (*RetrospectiveReport, error) {
	report := &RetrospectiveReport{
		ByOutcome:        make(map[Outcome]int),
		AmountRedirected: make(map[string]int64),
		ErrorBreakdown:   make(map[string]int),
		GatewayUsage:     make(map[string]int),
	}

	for i, log := range logs {
		report.TotalAttempts++
		report.ByOutcome[log.Outcome]++

		if i == 0 || log.Timestamp.Before(report.DateFrom) {
			report.DateFrom = log.Timestamp
		}
		if i == 0 || log.Timestamp.After(report.DateTo) {
			report.DateTo = log.Timestamp
		}

		if log.Gateway != "" {
			report.GatewayUsage[log.Gateway]++
		}
		if log.ErrorKind != "" {
			report.ErrorBreakdown[log.ErrorKind]++
		}

		switch log.Outcome {
		case OutcomeRedirect:
			report.Redirected++
			report.AmountRedirected[log.Currency] += log.Amount
		case OutcomeFailed, OutcomeMismatched:
			report.Failed++
		case OutcomeCancelled:
			report.Cancelled++
		}
	}

	report.ProcessingDuration = report.DateTo.Sub(report.DateFrom)
	return report, nil
}
