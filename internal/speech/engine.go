// Package speech supervises the text-to-speech engine subprocess and
// plays synthesized audio through a per-utterance playback subprocess.
package speech

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Process wraps one running TTS engine subprocess instance. Handles
// are replaced, never mutated: when the subprocess exits a new handle
// is installed and the old one is discarded.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

// Stdin is the pipe the text to synthesize is written to. Closing it
// flushes the engine and ends the current synthesis.
func (p *Process) Stdin() io.WriteCloser { return p.stdin }

// Stdout streams the synthesized raw PCM audio.
func (p *Process) Stdout() io.ReadCloser { return p.stdout }

// Engine is a supervised, self-healing TTS subprocess singleton. The
// engine process is long-lived and restarted whenever it exits, unless
// a deliberate shutdown is in progress.
type Engine struct {
	command      string
	args         []string
	restartDelay time.Duration
	logger       *slog.Logger

	mu           sync.Mutex
	proc         *Process
	shuttingDown bool
}

// NewEngine creates a TTS engine supervisor for the given command.
func NewEngine(command string, args []string, logger *slog.Logger) *Engine {
	return &Engine{
		command:      command,
		args:         args,
		restartDelay: time.Second,
		logger:       logger,
	}
}

// Start spawns the engine process and begins supervising it.
func (e *Engine) Start() error {
	proc, err := e.spawn()
	if err != nil {
		return fmt.Errorf("failed to start tts engine: %w", err)
	}

	e.mu.Lock()
	e.proc = proc
	e.mu.Unlock()

	go e.supervise()

	e.logger.Info("started tts engine", "command", e.command)
	return nil
}

// Process returns the latest engine process handle. Callers must read
// it fresh for every speaking operation because the handle is replaced
// on restart.
func (e *Engine) Process() *Process {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.proc
}

// Shutdown kills the engine process and suppresses the restart.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.shuttingDown {
		e.mu.Unlock()
		return
	}
	e.shuttingDown = true
	proc := e.proc
	e.mu.Unlock()

	e.logger.Info("stopping tts engine")
	if proc != nil && proc.cmd.Process != nil {
		proc.cmd.Process.Kill()
	}
}

// supervise is an explicit spawn, wait for exit, check shutdown flag,
// respawn loop.
func (e *Engine) supervise() {
	for {
		e.mu.Lock()
		proc := e.proc
		e.mu.Unlock()

		err := proc.cmd.Wait()

		e.mu.Lock()
		if e.shuttingDown {
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()

		e.logger.Debug("tts engine exited, restarting", "error", err)

		next, spawnErr := e.spawn()
		for spawnErr != nil {
			e.logger.Error("failed to restart tts engine", "error", spawnErr)
			time.Sleep(e.restartDelay)

			e.mu.Lock()
			if e.shuttingDown {
				e.mu.Unlock()
				return
			}
			e.mu.Unlock()

			next, spawnErr = e.spawn()
		}

		e.mu.Lock()
		e.proc = next
		e.mu.Unlock()
	}
}

// spawn starts one engine process. Stdin and stdout use pipes owned by
// the supervisor so that Wait never closes them while a speaking
// operation is still draining audio.
func (e *Engine) spawn() (*Process, error) {
	cmd := exec.Command(e.command, e.args...)

	inRead, inWrite, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	outRead, outWrite, err := os.Pipe()
	if err != nil {
		inRead.Close()
		inWrite.Close()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	errRead, errWrite, err := os.Pipe()
	if err != nil {
		inRead.Close()
		inWrite.Close()
		outRead.Close()
		outWrite.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	cmd.Stdin = inRead
	cmd.Stdout = outWrite
	cmd.Stderr = errWrite

	if err := cmd.Start(); err != nil {
		inRead.Close()
		inWrite.Close()
		outRead.Close()
		outWrite.Close()
		errRead.Close()
		errWrite.Close()
		return nil, err
	}

	// child owns its ends now
	inRead.Close()
	outWrite.Close()
	errWrite.Close()

	go e.logStderr(errRead)

	return &Process{cmd: cmd, stdin: inWrite, stdout: outRead}, nil
}

// logStderr logs stderr output from the engine process
func (e *Engine) logStderr(r io.ReadCloser) {
	defer r.Close()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		e.logger.Warn("tts engine stderr", "message", scanner.Text())
	}
}
