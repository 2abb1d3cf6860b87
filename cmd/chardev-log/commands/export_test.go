package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scobi84/chardev-go/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.clog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func TestExportJSONL(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp: ts,
			SessionID: "sess-1",
			Device:    "chardev",
			Direction: log.DirectionIn,
			Layer:     log.LayerDevice,
			Category:  log.CategoryTransfer,
			Transfer: &log.TransferEvent{
				Op:          log.TransferWrite,
				Requested:   8,
				Transferred: 8,
				NewOffset:   8,
			},
		},
		{
			Timestamp: ts.Add(time.Second),
			SessionID: "sess-1",
			Layer:     log.LayerTransport,
			Category:  log.CategoryMessage,
			Frame:     &log.FrameEvent{Size: 32},
		},
	}

	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data := readFile(t, out)
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}

	// Each line must be valid JSON
	for i, line := range lines {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}

	if !strings.Contains(data, "sess-1") {
		t.Error("expected session ID in JSONL output")
	}
}

func TestExportCSV(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp: ts,
			SessionID: "sess-1",
			Device:    "chardev",
			Direction: log.DirectionOut,
			Layer:     log.LayerDevice,
			Category:  log.CategoryTransfer,
			Transfer: &log.TransferEvent{
				Op:          log.TransferRead,
				Offset:      4,
				Requested:   16,
				Transferred: 7,
				NewOffset:   11,
			},
		},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	defer reader.Close()

	if err := exportCSV(reader, &buf); err != nil {
		t.Fatalf("exportCSV failed: %v", err)
	}

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}

	if !strings.HasPrefix(lines[0], "timestamp,session_id,direction") {
		t.Errorf("unexpected CSV header: %s", lines[0])
	}

	row := lines[1]
	if !strings.Contains(row, "READ") {
		t.Errorf("expected READ type in row: %s", row)
	}
	if !strings.Contains(row, "chardev") {
		t.Errorf("expected device name in row: %s", row)
	}
	// Offset and transferred byte count columns
	if !strings.Contains(row, ",4,7") {
		t.Errorf("expected offset 4 and 7 bytes in row: %s", row)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, []log.Event{
		{Timestamp: time.Now(), Category: log.CategoryState},
	})

	err := RunExport(path, "xml", "")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
