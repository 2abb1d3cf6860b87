package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/scobi84/chardev-go/pkg/log"
)

func TestStatsCountsByLayer(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryMessage},
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryMessage},
		{Timestamp: ts, Layer: log.LayerWire, Category: log.CategoryMessage},
		{Timestamp: ts, Layer: log.LayerDevice, Category: log.CategoryTransfer},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "TRANSPORT:") {
		t.Error("expected TRANSPORT layer in output")
	}
	if !strings.Contains(output, "WIRE:") {
		t.Error("expected WIRE layer in output")
	}
	if !strings.Contains(output, "DEVICE:") {
		t.Error("expected DEVICE layer in output")
	}
}

func TestStatsCountsSessions(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, SessionID: "sess-aaaa-bbbb", Category: log.CategoryMessage},
		{Timestamp: ts.Add(time.Second), SessionID: "sess-aaaa-bbbb", Category: log.CategoryMessage},
		{Timestamp: ts, SessionID: "sess-cccc-dddd", Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Sessions: 2") {
		t.Errorf("expected 2 sessions in output, got:\n%s", output)
	}
	if !strings.Contains(output, "[sess-aaa") {
		t.Error("expected sess-aaaa session details")
	}
}

func TestStatsTransferVolumes(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp: ts,
			SessionID: "s1",
			Layer:     log.LayerDevice,
			Category:  log.CategoryTransfer,
			Transfer:  &log.TransferEvent{Op: log.TransferWrite, Transferred: 100},
		},
		{
			Timestamp: ts,
			SessionID: "s1",
			Layer:     log.LayerDevice,
			Category:  log.CategoryTransfer,
			Transfer:  &log.TransferEvent{Op: log.TransferRead, Transferred: 40},
		},
		{
			Timestamp: ts,
			SessionID: "s1",
			Layer:     log.LayerDevice,
			Category:  log.CategoryTransfer,
			Transfer:  &log.TransferEvent{Op: log.TransferRead, Transferred: 60},
		},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Bytes Read:    100") {
		t.Errorf("expected 100 bytes read, got:\n%s", output)
	}
	if !strings.Contains(output, "Bytes Written: 100") {
		t.Errorf("expected 100 bytes written, got:\n%s", output)
	}
	if !strings.Contains(output, "Transfers: 3") {
		t.Errorf("expected 3 transfers for session, got:\n%s", output)
	}
}

func TestStatsTotalEventsAndTimeRange(t *testing.T) {
	start := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 28, 11, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: start, Category: log.CategoryMessage},
		{Timestamp: end, Category: log.CategoryMessage},
		{Timestamp: start.Add(time.Minute), Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Total Events: 3") {
		t.Errorf("expected 3 total events, got:\n%s", output)
	}
	if !strings.Contains(output, "1h0m0s") {
		t.Errorf("expected 1h0m0s duration, got:\n%s", output)
	}
}

func TestStatsErrorCount(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryMessage},
		{Timestamp: ts, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "busy"}},
		{Timestamp: ts, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "too large"}},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Errors: 2") {
		t.Errorf("expected 2 errors, got:\n%s", output)
	}
}
