package log

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestEvents(t *testing.T, path string, events []Event) {
	t.Helper()

	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	for _, e := range events {
		logger.Log(e)
	}
	require.NoError(t, logger.Close())
}

func transferEvent(ts time.Time, session string, op TransferOp) Event {
	dir := DirectionOut
	if op == TransferWrite {
		dir = DirectionIn
	}
	return Event{
		Timestamp: ts,
		SessionID: session,
		Device:    "chardev",
		Direction: dir,
		Layer:     LayerDevice,
		Category:  CategoryTransfer,
		Transfer: &TransferEvent{
			Op:          op,
			Offset:      0,
			Requested:   8,
			Transferred: 8,
			NewOffset:   8,
		},
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")
	now := time.Now().Truncate(time.Millisecond)

	events := []Event{
		transferEvent(now, "s1", TransferWrite),
		{
			Timestamp: now.Add(time.Second),
			SessionID: "s1",
			Device:    "chardev",
			Layer:     LayerDevice,
			Category:  CategoryState,
			StateChange: &StateChangeEvent{
				Entity:    StateEntityDevice,
				OldState:  "OPEN",
				NewState:  "CLOSED",
				OpenCount: 0,
			},
		},
	}
	writeTestEvents(t, path, events)

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	first, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "s1", first.SessionID)
	assert.Equal(t, CategoryTransfer, first.Category)
	require.NotNil(t, first.Transfer)
	assert.Equal(t, TransferWrite, first.Transfer.Op)
	assert.Equal(t, int64(8), first.Transfer.NewOffset)
	assert.WithinDuration(t, now, first.Timestamp, time.Millisecond)

	second, err := reader.Next()
	require.NoError(t, err)
	require.NotNil(t, second.StateChange)
	assert.Equal(t, "CLOSED", second.StateChange.NewState)

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFileLoggerAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")
	now := time.Now()

	writeTestEvents(t, path, []Event{transferEvent(now, "s1", TransferRead)})
	writeTestEvents(t, path, []Event{transferEvent(now, "s2", TransferRead)})

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	count := 0
	for {
		if _, err := reader.Next(); err != nil {
			break
		}
		count++
	}
	assert.Equal(t, 2, count)
}

func TestFileLoggerClosedIgnoresLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close()) // idempotent

	// Events after close are dropped, not a panic or an error
	logger.Log(transferEvent(time.Now(), "late", TransferRead))

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")
	base := time.Now().Truncate(time.Millisecond)

	writeTestEvents(t, path, []Event{
		transferEvent(base, "s1", TransferWrite),
		transferEvent(base.Add(time.Second), "s2", TransferRead),
		transferEvent(base.Add(2*time.Second), "s1", TransferRead),
	})

	countMatches := func(f Filter) int {
		reader, err := NewFilteredReader(path, f)
		require.NoError(t, err)
		defer reader.Close()

		count := 0
		for {
			if _, err := reader.Next(); err != nil {
				return count
			}
			count++
		}
	}

	t.Run("by session", func(t *testing.T) {
		assert.Equal(t, 2, countMatches(Filter{SessionID: "s1"}))
	})

	t.Run("by direction", func(t *testing.T) {
		out := DirectionOut
		assert.Equal(t, 2, countMatches(Filter{Direction: &out}))
	})

	t.Run("by category", func(t *testing.T) {
		state := CategoryState
		assert.Equal(t, 0, countMatches(Filter{Category: &state}))
	})

	t.Run("by time window", func(t *testing.T) {
		start := base.Add(500 * time.Millisecond)
		end := base.Add(1500 * time.Millisecond)
		assert.Equal(t, 1, countMatches(Filter{TimeStart: &start, TimeEnd: &end}))
	})

	t.Run("combined", func(t *testing.T) {
		out := DirectionOut
		assert.Equal(t, 1, countMatches(Filter{SessionID: "s1", Direction: &out}))
	})
}

func TestMultiLogger(t *testing.T) {
	a := &captureLogger{}
	b := &captureLogger{}

	multi := NewMultiLogger(a, b)
	multi.Log(transferEvent(time.Now(), "s1", TransferRead))

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(transferEvent(time.Now(), "s1", TransferWrite))

	out := buf.String()
	assert.Contains(t, out, "session_id=s1")
	assert.Contains(t, out, "op=WRITE")
	assert.Contains(t, out, "layer=DEVICE")

	buf.Reset()
	code := 3
	adapter.Log(Event{
		Timestamp: time.Now(),
		Layer:     LayerWire,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Layer:   LayerWire,
			Message: "too large",
			Code:    &code,
		},
	})

	out = buf.String()
	assert.Contains(t, out, "error_msg=")
	assert.Contains(t, out, "error_code=3")
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "IN", DirectionIn.String())
	assert.Equal(t, "OUT", DirectionOut.String())
	assert.Equal(t, "DEVICE", LayerDevice.String())
	assert.Equal(t, "TRANSFER", CategoryTransfer.String())
	assert.Equal(t, "READ", TransferRead.String())
	assert.Equal(t, "SESSION", StateEntitySession.String())
	assert.Equal(t, "PING", ControlMsgPing.String())

	// Unknown values degrade gracefully
	assert.True(t, strings.Contains(Direction(9).String(), "UNKNOWN"))
}

// captureLogger records events for inspection.
type captureLogger struct {
	events []Event
}

func (l *captureLogger) Log(e Event) {
	l.events = append(l.events, e)
}
