// Package mpv implements the playback transport on top of an mpv process
// controlled over its JSON IPC socket.
package mpv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/DexterLB/mpvipc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/internal/loop"
	"github.com/jfmyers9/beetle/internal/playback"
)

// Observed property ids.
const (
	pauseProperty uint = iota + 1
	timePosProperty
	durationProperty
	cacheProperty
)

var observed = map[uint]string{
	pauseProperty:    "pause",
	timePosProperty:  "time-pos",
	durationProperty: "duration",
	cacheProperty:    "demuxer-cache-time",
}

var enabledEvents = []string{
	"start-file",
	"file-loaded",
	"end-file",
}

// connectTimeout bounds how long Start waits for the IPC socket.
const connectTimeout = 5 * time.Second

// Config describes how to launch mpv.
type Config struct {
	Path      string   // mpv binary, defaults to "mpv"
	ExtraArgs []string // Appended to the built-in arguments
	SocketDir string   // Directory for the IPC socket, defaults to the temp dir
	Loop      loop.Loop
	Logger    zerolog.Logger
}

// conn is the subset of *mpvipc.Connection the player uses.
type conn interface {
	Call(arguments ...interface{}) (interface{}, error)
	Set(property string, value interface{}) error
	Close() error
}

// Player is a playback.Transport backed by one long-lived mpv process.
// Every Load retargets the same process.
type Player struct {
	conn   conn
	loop   loop.Loop
	logger zerolog.Logger

	cmd        *exec.Cmd
	socketPath string
	stop       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once

	mu       sync.Mutex
	handlers map[int]func(playback.Event)
	nextID   int

	// Listener goroutine state
	loaded   bool
	paused   bool
	progress playback.Progress
}

// Start launches mpv and connects to it.
func Start(ctx context.Context, cfg Config) (*Player, error) {
	if cfg.Loop == nil {
		return nil, errors.New("mpv: loop is required")
	}
	path := cfg.Path
	if path == "" {
		path = "mpv"
	}
	dir := cfg.SocketDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "beetle")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}
	sockPath := filepath.Join(dir, "mpv-"+uuid.NewString()+".sock")
	if err := os.RemoveAll(sockPath); err != nil {
		return nil, fmt.Errorf("failed to clean up socket: %w", err)
	}

	args := []string{
		"--idle",
		"--quiet",
		"--pause",
		"--no-video",
		"--no-terminal",
		"--keep-open=no",
		"--input-ipc-server=" + sockPath,
	}
	args = append(args, cfg.ExtraArgs...)

	cmd := exec.Command(path, args...)
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	ipc := mpvipc.NewConnection(sockPath)
	if err := openWithRetry(ctx, ipc); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("failed to connect to mpv: %w", err)
	}

	events, stop := ipc.NewEventListener()
	p := newPlayer(ipc, events, stop, cfg.Loop, cfg.Logger)
	p.cmd = cmd
	p.socketPath = sockPath

	if err := p.observe(); err != nil {
		_ = p.Close()
		return nil, err
	}

	p.logger.Info().Str("socket", sockPath).Msg("mpv started")
	return p, nil
}

func openWithRetry(ctx context.Context, ipc *mpvipc.Connection) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	for {
		err := ipc.Open()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func newPlayer(c conn, events <-chan *mpvipc.Event, stop chan struct{}, l loop.Loop, logger zerolog.Logger) *Player {
	p := &Player{
		conn:     c,
		loop:     l,
		logger:   logger.With().Str("component", "mpv").Logger(),
		stop:     stop,
		done:     make(chan struct{}),
		handlers: make(map[int]func(playback.Event)),
	}
	go p.listen(events)
	return p
}

func (p *Player) observe() error {
	for _, name := range enabledEvents {
		if _, err := p.conn.Call("enable_event", name); err != nil {
			return fmt.Errorf("failed to enable event %q: %w", name, err)
		}
	}
	for id := pauseProperty; id <= cacheProperty; id++ {
		if _, err := p.conn.Call("observe_property", id, observed[id]); err != nil {
			return fmt.Errorf("failed to observe property %q: %w", observed[id], err)
		}
	}
	return nil
}

// Load replaces the current source with url and starts it.
func (p *Player) Load(url string) error {
	if _, err := p.conn.Call("loadfile", url, "replace"); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}
	if err := p.conn.Set("pause", false); err != nil {
		return fmt.Errorf("unpause: %w", err)
	}
	return nil
}

// Resume unpauses playback.
func (p *Player) Resume() error {
	return p.conn.Set("pause", false)
}

// Pause pauses playback.
func (p *Player) Pause() error {
	return p.conn.Set("pause", true)
}

// Subscribe delivers events to fn on the loop until unsubscribed.
func (p *Player) Subscribe(fn func(playback.Event)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.handlers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

// Close stops listening, shuts mpv down and removes the socket. It is
// safe to call more than once.
func (p *Player) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.stop)
		err = p.conn.Close()

		if p.cmd != nil && p.cmd.Process != nil {
			if sigErr := p.cmd.Process.Signal(os.Interrupt); sigErr != nil {
				p.logger.Warn().Err(sigErr).Msg("Failed to interrupt mpv, killing")
				_ = p.cmd.Process.Kill()
			}
			_ = p.cmd.Wait()
		}

		if p.socketPath != "" {
			if rmErr := os.Remove(p.socketPath); rmErr != nil && !os.IsNotExist(rmErr) {
				p.logger.Warn().Err(rmErr).Msg("Failed to clean up socket")
			}
		}
	})
	return err
}

// Done is closed when the event stream ends.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

func (p *Player) listen(events <-chan *mpvipc.Event) {
	defer close(p.done)
	for ev := range events {
		if out, ok := p.translate(ev); ok {
			p.emit(out)
		}
	}
}

// translate maps one mpv event onto a playback event.
func (p *Player) translate(ev *mpvipc.Event) (playback.Event, bool) {
	if ev == nil {
		return playback.Event{}, false
	}

	switch ev.Name {
	case "property-change":
		return p.propertyChange(ev)

	case "start-file":
		p.loaded = false
		p.progress = playback.Progress{}

	case "file-loaded":
		p.loaded = true
		if !p.paused {
			return playback.Event{Kind: playback.EventPlay}, true
		}

	case "end-file":
		p.loaded = false
		switch ev.Reason {
		case "eof":
			return playback.Event{Kind: playback.EventEnded}, true
		case "error":
			return playback.Event{Kind: playback.EventError, Err: errors.New("mpv: playback error")}, true
		default:
			p.logger.Debug().Str("reason", ev.Reason).Msg("Ignoring end-file")
		}
	}

	return playback.Event{}, false
}

func (p *Player) propertyChange(ev *mpvipc.Event) (playback.Event, bool) {
	if ev.Data == nil {
		return playback.Event{}, false
	}

	switch ev.ID {
	case pauseProperty:
		paused, ok := ev.Data.(bool)
		if !ok {
			return playback.Event{}, false
		}
		p.paused = paused
		if !p.loaded {
			return playback.Event{}, false
		}
		if paused {
			return playback.Event{Kind: playback.EventPause}, true
		}
		return playback.Event{Kind: playback.EventPlay}, true

	case timePosProperty:
		p.progress.Position = seconds(ev.Data)
	case durationProperty:
		p.progress.Duration = seconds(ev.Data)
	case cacheProperty:
		p.progress.Buffered = seconds(ev.Data)
	default:
		return playback.Event{}, false
	}

	return playback.Event{Kind: playback.EventProgress, Progress: p.progress}, true
}

// emit posts ev to the handlers subscribed at the time mpv produced it.
// A handler subscribed later never sees it, even if the callback is still
// queued when the subscription changes.
func (p *Player) emit(ev playback.Event) {
	p.mu.Lock()
	ids := make([]int, 0, len(p.handlers))
	for id := range p.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(playback.Event), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, p.handlers[id])
	}
	p.mu.Unlock()

	p.loop.Post(func() {
		for _, fn := range handlers {
			fn(ev)
		}
	})
}

func seconds(v interface{}) time.Duration {
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

// Verify Player implements playback.Transport at compile time.
var _ playback.Transport = (*Player)(nil)
