// Package mpv drives an mpv process over its JSON IPC socket.
package mpv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tessro/segue/internal/core"
)

const (
	dialInterval  = 50 * time.Millisecond
	quitGrace     = 2 * time.Second
	commandBuffer = 32
	eventBuffer   = 32
	pauseObserver = 1
)

// ErrClosed is returned by commands sent after Close.
var ErrClosed = errors.New("mpv: widget closed")

// Options configures the mpv process.
type Options struct {
	Path       string
	SocketPath string
	Video      bool
	ExtraArgs  []string
}

type command struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type message struct {
	Event     string          `json:"event,omitempty"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
	Error     string          `json:"error,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`
}

// Widget is a core.Widget backed by an mpv process.
type Widget struct {
	opts Options
	log  logrus.FieldLogger

	cmd    *exec.Cmd
	conn   net.Conn
	socket string

	commands chan command
	events   chan core.WidgetEvent
	done     chan struct{}
	nextID   atomic.Int64

	mu        sync.Mutex
	attached  bool
	closeOnce sync.Once
	loops     sync.WaitGroup
}

var _ core.Widget = (*Widget)(nil)

// New creates a widget. No process is started until Bootstrap.
func New(opts Options, log logrus.FieldLogger) *Widget {
	if opts.Path == "" {
		opts.Path = "mpv"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Widget{
		opts:     opts,
		log:      log.WithField("component", "mpv"),
		commands: make(chan command, commandBuffer),
		events:   make(chan core.WidgetEvent, eventBuffer),
		done:     make(chan struct{}),
	}
}

// Args returns the mpv command line for the given socket.
func (o Options) Args(socket string) []string {
	args := []string{
		"--idle=yes",
		"--no-terminal",
		"--input-ipc-server=" + socket,
	}
	if !o.Video {
		args = append(args, "--no-video")
	}
	return append(args, o.ExtraArgs...)
}

// Bootstrap starts mpv and waits until its IPC socket accepts connections or
// ctx is done.
func (w *Widget) Bootstrap(ctx context.Context) error {
	select {
	case <-w.done:
		return ErrClosed
	default:
	}

	w.socket = w.opts.SocketPath
	if w.socket == "" {
		w.socket = filepath.Join(os.TempDir(), fmt.Sprintf("segue-mpv-%s.sock", uuid.NewString()))
	}
	_ = os.Remove(w.socket)

	cmd := exec.Command(w.opts.Path, w.opts.Args(w.socket)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	w.mu.Lock()
	w.cmd = cmd
	w.mu.Unlock()
	w.log.WithFields(logrus.Fields{"pid": cmd.Process.Pid, "socket": w.socket}).Debug("mpv started")

	conn, err := dialSocket(ctx, w.socket)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		w.mu.Lock()
		w.cmd = nil
		w.mu.Unlock()
		return fmt.Errorf("connect to mpv: %w", err)
	}

	if !w.attach(conn) {
		return ErrClosed
	}
	return nil
}

func dialSocket(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	ticker := time.NewTicker(dialInterval)
	defer ticker.Stop()

	for {
		conn, err := d.DialContext(ctx, "unix", path)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

// attach starts the IPC loops on conn. It reports false if the widget was
// closed first.
func (w *Widget) attach(conn net.Conn) bool {
	w.mu.Lock()
	select {
	case <-w.done:
		w.mu.Unlock()
		conn.Close()
		return false
	default:
	}
	w.conn = conn
	w.attached = true
	w.loops.Add(2)
	w.mu.Unlock()

	go w.writeLoop()
	go w.readLoop()

	_ = w.send("observe_property", pauseObserver, "pause")
	return true
}

func (w *Widget) send(args ...any) error {
	c := command{Command: args, RequestID: w.nextID.Add(1)}
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	select {
	case w.commands <- c:
		return nil
	case <-w.done:
		return ErrClosed
	default:
		return fmt.Errorf("mpv: command queue full, dropping %v", args[0])
	}
}

func (w *Widget) writeLoop() {
	defer w.loops.Done()

	enc := json.NewEncoder(w.conn)
	for {
		select {
		case <-w.done:
			return
		case c := <-w.commands:
			if err := enc.Encode(c); err != nil {
				w.log.WithError(err).WithField("command", c.Command[0]).Warn("mpv write failed")
			}
		}
	}
}

func (w *Widget) readLoop() {
	defer w.loops.Done()
	defer close(w.events)

	scanner := bufio.NewScanner(w.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// mpv only reports pause on change, so a freshly loaded file carries the
	// last known value.
	playing := false

	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			w.log.WithError(err).Debug("skipping malformed mpv message")
			continue
		}
		if msg.Event == "" && msg.Error != "" && msg.Error != "success" {
			w.log.WithFields(logrus.Fields{"request_id": msg.RequestID, "error": msg.Error}).Warn("mpv command failed")
			continue
		}

		ev, ok := translate(msg)
		if !ok {
			continue
		}
		if ev.Kind == core.WidgetStateChanged {
			playing = ev.Playing
		}
		if !w.emit(ev) {
			return
		}
		if ev.Kind == core.WidgetLoaded && !w.emit(core.WidgetEvent{Kind: core.WidgetStateChanged, Playing: playing}) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case <-w.done:
		default:
			w.log.WithError(err).Warn("mpv connection lost")
		}
	}
}

func (w *Widget) emit(ev core.WidgetEvent) bool {
	select {
	case w.events <- ev:
		return true
	case <-w.done:
		return false
	}
}

// translate maps an mpv IPC event to a widget event.
func translate(msg message) (core.WidgetEvent, bool) {
	switch msg.Event {
	case "file-loaded":
		return core.WidgetEvent{Kind: core.WidgetLoaded}, true
	case "end-file":
		switch msg.Reason {
		case "eof":
			return core.WidgetEvent{Kind: core.WidgetEnded, Reason: msg.Reason}, true
		case "error":
			reason := msg.FileError
			if reason == "" {
				reason = msg.Reason
			}
			return core.WidgetEvent{Kind: core.WidgetFailed, Reason: reason}, true
		default:
			return core.WidgetEvent{}, false
		}
	case "property-change":
		if msg.Name != "pause" || len(msg.Data) == 0 {
			return core.WidgetEvent{}, false
		}
		var paused bool
		if err := json.Unmarshal(msg.Data, &paused); err != nil {
			return core.WidgetEvent{}, false
		}
		return core.WidgetEvent{Kind: core.WidgetStateChanged, Playing: !paused}, true
	default:
		return core.WidgetEvent{}, false
	}
}

// Load replaces the current file with src and starts playing it.
func (w *Widget) Load(src core.Source) error {
	if err := w.send("loadfile", src.URL(), "replace"); err != nil {
		return err
	}
	return w.send("set_property", "pause", false)
}

func (w *Widget) Play() error {
	return w.send("set_property", "pause", false)
}

func (w *Widget) Pause() error {
	return w.send("set_property", "pause", true)
}

func (w *Widget) Stop() error {
	return w.send("stop")
}

// Events is closed once the IPC connection is gone.
func (w *Widget) Events() <-chan core.WidgetEvent {
	return w.events
}

// Close asks mpv to quit, then kills it if it lingers.
func (w *Widget) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		attached := w.attached
		conn := w.conn
		cmd := w.cmd
		close(w.done)
		w.mu.Unlock()

		if conn != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(quitGrace))
			_ = json.NewEncoder(conn).Encode(command{Command: []any{"quit"}})
			err = conn.Close()
		}
		if !attached {
			close(w.events)
		}
		w.loops.Wait()

		if cmd != nil {
			err = errors.Join(err, w.reap(cmd))
		}
		if w.opts.SocketPath == "" && w.socket != "" {
			_ = os.Remove(w.socket)
		}
	})
	return err
}

func (w *Widget) reap(cmd *exec.Cmd) error {
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case <-exited:
		return nil
	case <-time.After(quitGrace):
		w.log.Warn("mpv did not quit, killing")
		if err := cmd.Process.Kill(); err != nil {
			return err
		}
		<-exited
		return nil
	}
}
