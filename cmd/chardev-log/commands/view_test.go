package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/scobi84/chardev-go/pkg/log"
)

func TestFormatFrameEvent(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp: ts,
		SessionID: "abc12345-6789-0123-4567-890abcdef012",
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:      128,
			Data:      []byte{0xa3, 0x01, 0x10, 0x02},
			Truncated: false,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "2026-01-28T10:15:32.123456Z") {
		t.Errorf("expected microsecond timestamp, got: %s", output)
	}
	if !strings.Contains(output, "[sess:abc12345]") {
		t.Errorf("expected shortened session ID, got: %s", output)
	}
	if !strings.Contains(output, "OUT") {
		t.Errorf("expected OUT direction, got: %s", output)
	}
	if !strings.Contains(output, "TRANSPORT") {
		t.Errorf("expected TRANSPORT layer, got: %s", output)
	}
	if !strings.Contains(output, "128 bytes") {
		t.Errorf("expected frame size, got: %s", output)
	}
	if !strings.Contains(output, "a3011002") {
		t.Errorf("expected hex frame data, got: %s", output)
	}
}

func TestFormatTransferEvent(t *testing.T) {
	event := log.Event{
		Timestamp: time.Now(),
		SessionID: "sess-1",
		Device:    "chardev",
		Direction: log.DirectionIn,
		Layer:     log.LayerDevice,
		Category:  log.CategoryTransfer,
		Transfer: &log.TransferEvent{
			Op:          log.TransferWrite,
			Offset:      0,
			Requested:   11,
			Transferred: 11,
			NewOffset:   11,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "WRITE") {
		t.Errorf("expected WRITE label, got: %s", output)
	}
	if !strings.Contains(output, "Requested: 11") {
		t.Errorf("expected requested count, got: %s", output)
	}
	if !strings.Contains(output, "NewOffset: 11") {
		t.Errorf("expected new offset, got: %s", output)
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	event := log.Event{
		Timestamp: time.Now(),
		Device:    "chardev",
		Layer:     log.LayerDevice,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:    log.StateEntityDevice,
			OldState:  "CLOSED",
			NewState:  "OPEN",
			OpenCount: 1,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Entity: DEVICE") {
		t.Errorf("expected entity, got: %s", output)
	}
	if !strings.Contains(output, "CLOSED -> OPEN") {
		t.Errorf("expected state transition, got: %s", output)
	}
	if !strings.Contains(output, "OpenCount: 1") {
		t.Errorf("expected open count, got: %s", output)
	}
}

func TestFormatErrorEvent(t *testing.T) {
	code := 3
	event := log.Event{
		Timestamp: time.Now(),
		SessionID: "sess-1",
		Layer:     log.LayerWire,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerWire,
			Message: "write exceeds capacity",
			Code:    &code,
			Context: "write",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Error") {
		t.Errorf("expected Error label, got: %s", output)
	}
	if !strings.Contains(output, "write exceeds capacity") {
		t.Errorf("expected error message, got: %s", output)
	}
	if !strings.Contains(output, "Code: 3") {
		t.Errorf("expected error code, got: %s", output)
	}
}

func TestFormatControlEventUsesCtrlHeader(t *testing.T) {
	event := log.Event{
		Timestamp:  time.Now(),
		SessionID:  "sess-1",
		Direction:  log.DirectionIn,
		Layer:      log.LayerTransport,
		Category:   log.CategoryControl,
		ControlMsg: &log.ControlMsgEvent{Type: log.ControlMsgPing},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "CTRL") {
		t.Errorf("expected CTRL header, got: %s", output)
	}
	if !strings.Contains(output, "PING") {
		t.Errorf("expected PING label, got: %s", output)
	}
}

func TestRunViewFiltersByLayer(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryMessage, Frame: &log.FrameEvent{Size: 10}},
		{Timestamp: ts, Layer: log.LayerDevice, Category: log.CategoryTransfer, Transfer: &log.TransferEvent{Op: log.TransferRead}},
	}

	path := createTestLogFile(t, events)

	layer := log.LayerDevice
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Layer: &layer}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "Frame") {
		t.Errorf("transport event should be filtered out, got: %s", output)
	}
	if !strings.Contains(output, "READ") {
		t.Errorf("expected device transfer event, got: %s", output)
	}
}

func TestParseFlags(t *testing.T) {
	if _, err := ParseLayerFlag("Device"); err != nil {
		t.Errorf("expected case-insensitive layer parse, got: %v", err)
	}
	if _, err := ParseLayerFlag("kernel"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if _, err := ParseDirectionFlag("OUT"); err != nil {
		t.Errorf("expected case-insensitive direction parse, got: %v", err)
	}
	if _, err := ParseDirectionFlag("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
	if _, err := ParseCategoryFlag("transfer"); err != nil {
		t.Errorf("expected category parse, got: %v", err)
	}
	if _, err := ParseCategoryFlag("snapshot"); err == nil {
		t.Error("expected error for unknown category")
	}
}
