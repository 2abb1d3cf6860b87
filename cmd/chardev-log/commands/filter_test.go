package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/scobi84/chardev-go/pkg/log"
)

func countEvents(t *testing.T, path string) int {
	t.Helper()

	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open filtered log: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		if _, err := reader.Next(); err != nil {
			if err != io.EOF {
				t.Fatalf("failed to read event: %v", err)
			}
			return count
		}
		count++
	}
}

func TestFilterBySession(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, SessionID: "sess-1", Category: log.CategoryMessage},
		{Timestamp: ts, SessionID: "sess-2", Category: log.CategoryMessage},
		{Timestamp: ts, SessionID: "sess-1", Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.clog")

	err := RunFilter(path, FilterOptions{Output: out, SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	if got := countEvents(t, out); got != 2 {
		t.Errorf("expected 2 filtered events, got %d", got)
	}
}

func TestFilterByLayerAndDirection(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Direction: log.DirectionIn, Layer: log.LayerDevice, Category: log.CategoryTransfer},
		{Timestamp: ts, Direction: log.DirectionOut, Layer: log.LayerDevice, Category: log.CategoryTransfer},
		{Timestamp: ts, Direction: log.DirectionIn, Layer: log.LayerTransport, Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.clog")

	err := RunFilter(path, FilterOptions{Output: out, Layer: "device", Direction: "in"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	if got := countEvents(t, out); got != 1 {
		t.Errorf("expected 1 filtered event, got %d", got)
	}
}

func TestFilterByTimeWindow(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, Category: log.CategoryMessage},
		{Timestamp: base.Add(time.Hour), Category: log.CategoryMessage},
		{Timestamp: base.Add(2 * time.Hour), Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.clog")

	err := RunFilter(path, FilterOptions{
		Output:    out,
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	if got := countEvents(t, out); got != 1 {
		t.Errorf("expected 1 event in time window, got %d", got)
	}
}

func TestFilterInvalidTime(t *testing.T) {
	path := createTestLogFile(t, []log.Event{
		{Timestamp: time.Now(), Category: log.CategoryMessage},
	})
	out := filepath.Join(t.TempDir(), "filtered.clog")

	err := RunFilter(path, FilterOptions{Output: out, TimeStart: "yesterday"})
	if err == nil {
		t.Fatal("expected error for invalid time format")
	}
}
