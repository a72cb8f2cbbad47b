// Package player plays preview audio for the round engine.
//
// Exec hands the URL to an external player process (ffplay by default) and
// kills it when the round ends. Silent plays nothing and is used for
// headless runs and tests.
package player

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

var (
	// ErrPlayerNotFound is returned when the player binary is not installed.
	ErrPlayerNotFound = errors.New("audio player not found")

	// ErrPlaybackFailed is returned when the player exits with an error
	// before playback could start.
	ErrPlaybackFailed = errors.New("playback failed")
)

// DefaultStartGrace is how long a player must survive to count as started.
const DefaultStartGrace = 200 * time.Millisecond

// DefaultCommand plays through ffplay without a window.
func DefaultCommand() []string {
	return []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}
}

// MPVCommand plays through mpv without video output.
func MPVCommand() []string {
	return []string{"mpv", "--no-video", "--really-quiet"}
}

type process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *process) kill() {
	select {
	case <-p.done:
		return
	default:
	}
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	<-p.done
}

// Exec launches an external player per URL. The URL (or the local path of a
// file:// URL) is appended as the last argument of Command.
//
// Example:
//
//	p := player.NewExec(player.DefaultCommand())
//	if err := p.Play(ctx, previewURL); err != nil {
//	    // ffplay missing or the URL could not be opened
//	}
//	defer p.Stop()
type Exec struct {
	Command    []string
	StartGrace time.Duration

	mu      sync.Mutex
	current *process
}

// NewExec creates a player for command. An empty command uses DefaultCommand.
func NewExec(command []string) *Exec {
	if len(command) == 0 {
		command = DefaultCommand()
	}
	return &Exec{Command: command, StartGrace: DefaultStartGrace}
}

// Play stops any current playback and starts rawURL.
//
// It returns once the process has run for StartGrace, or with an error if
// the binary is missing or the process exits with a failure first. A process
// that exits cleanly within the grace period (a very short clip) counts as
// started. The process is killed by Stop or when ctx is done.
func (e *Exec) Play(ctx context.Context, rawURL string) error {
	e.Stop()

	bin, err := exec.LookPath(e.Command[0])
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPlayerNotFound, e.Command[0], err)
	}

	args := append(append([]string(nil), e.Command[1:]...), MediaPath(rawURL))
	cmd := exec.Command(bin, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrPlaybackFailed, err)
	}

	proc := &process{cmd: cmd, done: make(chan struct{})}
	go func() {
		proc.err = cmd.Wait()
		close(proc.done)
	}()

	grace := e.StartGrace
	if grace <= 0 {
		grace = DefaultStartGrace
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-proc.done:
		if proc.err != nil {
			return fmt.Errorf("%w: %s: %w", ErrPlaybackFailed, filepath.Base(bin), proc.err)
		}
		return nil
	case <-ctx.Done():
		proc.kill()
		return ctx.Err()
	case <-timer.C:
	}

	e.mu.Lock()
	e.current = proc
	e.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			proc.kill()
		case <-proc.done:
		}
	}()

	return nil
}

// Stop kills the current player process, if any, and waits for it to exit.
func (e *Exec) Stop() {
	e.mu.Lock()
	proc := e.current
	e.current = nil
	e.mu.Unlock()

	if proc != nil {
		proc.kill()
	}
}

// MediaPath converts file:// URLs to local paths and returns other URLs unchanged.
func MediaPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "file" {
		return rawURL
	}
	return filepath.FromSlash(u.Path)
}

// Silent accepts every URL and plays nothing.
type Silent struct {
	mu     sync.Mutex
	played []string
}

// NewSilent creates a Silent player.
func NewSilent() *Silent {
	return &Silent{}
}

func (s *Silent) Play(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.played = append(s.played, rawURL)
	s.mu.Unlock()
	return nil
}

func (s *Silent) Stop() {}

// Played returns the URLs passed to Play, in order.
func (s *Silent) Played() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.played...)
}
