package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/scobi84/chardev-go/pkg/transport"
	"github.com/scobi84/chardev-go/pkg/wire"
)

// shell is the interactive session shell. It owns the caller-side offset
// cursor and the message ID sequence for the connection.
type shell struct {
	conn    *transport.ClientConn
	rl      *readline.Instance
	timeout time.Duration

	offset int64
	nextID uint32
}

func newShell(conn *transport.ClientConn, timeout time.Duration) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "chardev> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &shell{
		conn:    conn,
		rl:      rl,
		timeout: timeout,
		nextID:  wire.MinMessageID,
	}, nil
}

// Run processes commands until the user quits or the connection drops.
func (s *shell) Run() {
	defer s.rl.Close()

	for {
		line, err := s.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd := strings.ToLower(fields[0])
		args := fields[1:]

		switch cmd {
		case "open", "o":
			s.cmdOpen()
		case "close", "c":
			s.cmdClose()
		case "read", "r":
			s.cmdRead(args)
		case "write", "w":
			s.cmdWrite(args)
		case "seek":
			s.cmdSeek(args)
		case "rewind":
			s.offset = 0
			fmt.Fprintln(s.rl.Stdout(), "offset now 0")
		case "offset":
			fmt.Fprintf(s.rl.Stdout(), "offset %d\n", s.offset)
		case "stat", "s":
			s.cmdStat()
		case "ping":
			s.cmdPing()
		case "help", "?":
			s.printHelp()
		case "quit", "exit", "q":
			return
		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	help := `Commands:
  open              Acquire the device (exclusive)
  close             Release the device
  read [n]          Read up to n bytes at the cursor (default 64)
  write <text>      Write text at the cursor
  seek <offset>     Move the cursor
  rewind            Move the cursor to 0
  offset            Show the cursor
  stat              Show device diagnostics
  ping              Check connection liveness
  help, ?           Show this help
  quit, exit, q     Leave the shell
`
	fmt.Fprint(s.rl.Stdout(), help)
}

// roundTrip sends a request and waits for the matching response.
func (s *shell) roundTrip(req *wire.Request) (*wire.Response, error) {
	req.MessageID = s.nextID
	s.nextID++

	data, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.conn.Send(data); err != nil {
		return nil, err
	}

	respData, err := s.conn.Receive(s.timeout)
	if err != nil {
		return nil, err
	}
	resp, err := wire.DecodeResponse(respData)
	if err != nil {
		return nil, err
	}
	if resp.MessageID != req.MessageID {
		return nil, fmt.Errorf("response message ID %d does not match request %d",
			resp.MessageID, req.MessageID)
	}
	return resp, nil
}

// reportError prints a transport or protocol failure.
func (s *shell) reportError(err error) {
	fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
}

// reportStatus prints a non-success response status.
func (s *shell) reportStatus(resp *wire.Response) {
	if resp.Message != "" {
		fmt.Fprintf(s.rl.Stdout(), "%s: %s\n", resp.Status, resp.Message)
	} else {
		fmt.Fprintf(s.rl.Stdout(), "%s\n", resp.Status)
	}
}

func (s *shell) cmdOpen() {
	resp, err := s.roundTrip(&wire.Request{Operation: wire.OpOpen})
	if err != nil {
		s.reportError(err)
		return
	}
	if !resp.IsSuccess() {
		s.reportStatus(resp)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

func (s *shell) cmdClose() {
	resp, err := s.roundTrip(&wire.Request{Operation: wire.OpClose})
	if err != nil {
		s.reportError(err)
		return
	}
	if !resp.IsSuccess() {
		s.reportStatus(resp)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

func (s *shell) cmdRead(args []string) {
	maxLen := uint32(64)
	if len(args) > 0 {
		n, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid length: %s\n", args[0])
			return
		}
		maxLen = uint32(n)
	}

	resp, err := s.roundTrip(&wire.Request{
		Operation: wire.OpRead,
		Offset:    s.offset,
		MaxLength: maxLen,
	})
	if err != nil {
		s.reportError(err)
		return
	}
	if !resp.IsSuccess() {
		s.reportStatus(resp)
		return
	}

	s.offset = resp.NewOffset
	if len(resp.Data) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "(end of content)")
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%q (%d bytes, offset now %d)\n",
		resp.Data, len(resp.Data), resp.NewOffset)
}

func (s *shell) cmdWrite(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: write <text>")
		return
	}
	payload := []byte(strings.Join(args, " "))

	resp, err := s.roundTrip(&wire.Request{
		Operation: wire.OpWrite,
		Offset:    s.offset,
		Data:      payload,
	})
	if err != nil {
		s.reportError(err)
		return
	}
	if !resp.IsSuccess() {
		s.reportStatus(resp)
		return
	}

	s.offset = resp.NewOffset
	fmt.Fprintf(s.rl.Stdout(), "%d bytes written, offset now %d\n", resp.Count, resp.NewOffset)
}

func (s *shell) cmdSeek(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: seek <offset>")
		return
	}
	offset, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid offset: %s\n", args[0])
		return
	}

	// The cursor is caller-owned; the gateway validates it on the next
	// read or write.
	s.offset = offset
	fmt.Fprintf(s.rl.Stdout(), "offset now %d\n", offset)
}

func (s *shell) cmdStat() {
	resp, err := s.roundTrip(&wire.Request{Operation: wire.OpStat})
	if err != nil {
		s.reportError(err)
		return
	}
	if !resp.IsSuccess() || resp.Stat == nil {
		s.reportStatus(resp)
		return
	}

	stat := resp.Stat
	out := s.rl.Stdout()
	fmt.Fprintf(out, "Name:      %s\n", stat.Name)
	fmt.Fprintf(out, "Tag:       %d\n", stat.Tag)
	if stat.Path != "" {
		fmt.Fprintf(out, "Path:      %s\n", stat.Path)
	}
	fmt.Fprintf(out, "Capacity:  %d bytes\n", stat.Capacity)
	fmt.Fprintf(out, "Length:    %d bytes\n", stat.Length)
	fmt.Fprintf(out, "Open:      %t (holders: %d)\n", stat.Open, stat.OpenCount)
}

func (s *shell) cmdPing() {
	seq := s.nextID
	s.nextID++

	start := time.Now()
	if err := s.conn.SendPing(seq); err != nil {
		s.reportError(err)
		return
	}

	data, err := s.conn.Receive(s.timeout)
	if err != nil {
		s.reportError(err)
		return
	}
	msgType, msgSeq, err := transport.DecodeControlMessage(data)
	if err != nil {
		s.reportError(err)
		return
	}
	if msgType != wire.ControlPong || msgSeq != seq {
		fmt.Fprintf(s.rl.Stdout(), "Unexpected reply: %s seq=%d\n", msgType, msgSeq)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "pong seq=%d (%v)\n", seq, time.Since(start).Round(time.Microsecond))
}
