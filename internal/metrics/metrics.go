// Package metrics provides lightweight, lock-free counters for tracking
// the packets and registrations of an ndnpoke run.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for an ndnpoke run.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	interestsReceived atomic.Int64
	interestsMatched  atomic.Int64
	dataSent          atomic.Int64
	bytesIn           atomic.Int64
	bytesOut          atomic.Int64
	registrations     atomic.Int64
	registrationFails atomic.Int64
	dialAttempts      atomic.Int64
	errorsTotal       atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Packet metrics ───────────────────────────────────────────────────

// InterestReceived counts an Interest read from the face.
func (c *Collector) InterestReceived() {
	if c == nil {
		return
	}
	c.interestsReceived.Add(1)
}

// InterestMatched counts an Interest delivered to a registered filter.
func (c *Collector) InterestMatched() {
	if c == nil {
		return
	}
	c.interestsMatched.Add(1)
}

// DataSent counts a Data packet written to the face.
func (c *Collector) DataSent() {
	if c == nil {
		return
	}
	c.dataSent.Add(1)
}

// InterestsReceived returns the number of Interests read.
func (c *Collector) InterestsReceived() int64 {
	if c == nil {
		return 0
	}
	return c.interestsReceived.Load()
}

// InterestsMatched returns the number of Interests that hit a filter.
func (c *Collector) InterestsMatched() int64 {
	if c == nil {
		return 0
	}
	return c.interestsMatched.Load()
}

// TotalDataSent returns the number of Data packets written.
func (c *Collector) TotalDataSent() int64 {
	if c == nil {
		return 0
	}
	return c.dataSent.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes read from the forwarder.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes written to the forwarder.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Registration metrics ─────────────────────────────────────────────

// RegistrationSucceeded counts an accepted rib/register command.
func (c *Collector) RegistrationSucceeded() {
	if c == nil {
		return
	}
	c.registrations.Add(1)
}

// RegistrationFailed counts a refused or unanswered rib/register command.
func (c *Collector) RegistrationFailed() {
	if c == nil {
		return
	}
	c.registrationFails.Add(1)
}

// Registrations returns the number of accepted registrations.
func (c *Collector) Registrations() int64 {
	if c == nil {
		return 0
	}
	return c.registrations.Load()
}

// ── Connection metrics ───────────────────────────────────────────────

// DialAttempt records one attempt to reach the forwarder.
func (c *Collector) DialAttempt() {
	if c == nil {
		return
	}
	c.dialAttempts.Add(1)
}

// DialAttempts returns the number of dial attempts.
func (c *Collector) DialAttempts() int64 {
	if c == nil {
		return 0
	}
	return c.dialAttempts.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime               string `json:"uptime"`
	InterestsReceived    int64  `json:"interests_received"`
	InterestsMatched     int64  `json:"interests_matched"`
	DataSent             int64  `json:"data_sent"`
	BytesIn              int64  `json:"bytes_in"`
	BytesOut             int64  `json:"bytes_out"`
	Registrations        int64  `json:"registrations"`
	RegistrationFailures int64  `json:"registration_failures"`
	DialAttempts         int64  `json:"dial_attempts"`
	ErrorsTotal          int64  `json:"errors_total"`
	LastError            string `json:"last_error,omitempty"`
	LastErrorMessage     string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:               time.Since(c.startTime).Truncate(time.Millisecond).String(),
		InterestsReceived:    c.interestsReceived.Load(),
		InterestsMatched:     c.interestsMatched.Load(),
		DataSent:             c.dataSent.Load(),
		BytesIn:              c.bytesIn.Load(),
		BytesOut:             c.bytesOut.Load(),
		Registrations:        c.registrations.Load(),
		RegistrationFailures: c.registrationFails.Load(),
		DialAttempts:         c.dialAttempts.Load(),
		ErrorsTotal:          c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
