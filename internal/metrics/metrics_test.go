package metrics

import (
	"encoding/json"
	"testing"
)

func TestCollector_Packets(t *testing.T) {
	c := New()

	c.InterestReceived()
	c.InterestReceived()
	c.InterestMatched()
	c.DataSent()

	if c.InterestsReceived() != 2 {
		t.Errorf("received = %d, want 2", c.InterestsReceived())
	}
	if c.InterestsMatched() != 1 {
		t.Errorf("matched = %d, want 1", c.InterestsMatched())
	}
	if c.TotalDataSent() != 1 {
		t.Errorf("data sent = %d, want 1", c.TotalDataSent())
	}
}

func TestCollector_Bytes(t *testing.T) {
	c := New()

	c.BytesReceived(1024)
	c.BytesSent(512)
	c.BytesReceived(100)

	if c.TotalBytesIn() != 1124 {
		t.Errorf("bytes in = %d, want 1124", c.TotalBytesIn())
	}
	if c.TotalBytesOut() != 512 {
		t.Errorf("bytes out = %d, want 512", c.TotalBytesOut())
	}
}

func TestCollector_Registrations(t *testing.T) {
	c := New()

	c.RegistrationSucceeded()
	c.RegistrationFailed()
	c.RegistrationFailed()

	if c.Registrations() != 1 {
		t.Errorf("registrations = %d, want 1", c.Registrations())
	}
	if snap := c.Snapshot(); snap.RegistrationFailures != 2 {
		t.Errorf("failures = %d, want 2", snap.RegistrationFailures)
	}
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("first error")
	c.RecordError("second error")

	if c.ErrorCount() != 2 {
		t.Errorf("errors = %d, want 2", c.ErrorCount())
	}
}

func TestCollector_Snapshot(t *testing.T) {
	c := New()
	c.DialAttempt()
	c.BytesReceived(100)
	c.BytesSent(50)
	c.RecordError("test")

	snap := c.Snapshot()
	if snap.DialAttempts != 1 {
		t.Errorf("snap dial attempts = %d", snap.DialAttempts)
	}
	if snap.BytesIn != 100 {
		t.Errorf("snap bytes in = %d", snap.BytesIn)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("snap errors = %d", snap.ErrorsTotal)
	}
	if snap.LastErrorMessage != "test" {
		t.Errorf("snap error msg = %q", snap.LastErrorMessage)
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.DataSent()
	c.BytesSent(42)

	raw := c.JSON()
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.DataSent != 1 {
		t.Errorf("JSON data sent = %d", snap.DataSent)
	}
	if snap.BytesOut != 42 {
		t.Errorf("JSON bytes out = %d", snap.BytesOut)
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.InterestReceived()
	c.InterestMatched()
	c.DataSent()
	c.BytesReceived(100)
	c.BytesSent(100)
	c.RegistrationSucceeded()
	c.RegistrationFailed()
	c.DialAttempt()
	c.RecordError("test")

	if c.InterestsReceived() != 0 {
		t.Error("nil collector should return 0")
	}
	if c.TotalBytesIn() != 0 {
		t.Error("nil collector should return 0")
	}
	if c.ErrorCount() != 0 {
		t.Error("nil collector should return 0")
	}

	snap := c.Snapshot()
	if snap.DataSent != 0 {
		t.Error("nil snapshot should be zero")
	}

	j := c.JSON()
	if j == "" {
		t.Error("nil JSON should return valid JSON")
	}
}
