package agent

import (
	"bufio"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/cctakt/cctakt/internal/core"
	"github.com/cctakt/cctakt/internal/stream"
)

// WorkerCLIFlags are appended to every worker invocation. Merge and build
// workers add their own --max-turns budget on top of these.
var WorkerCLIFlags = []string{"--output-format", "stream-json", "--verbose", "--dangerously-skip-permissions"}

// Worker wraps a non-interactive child CLI invoked with -p <prompt>: its
// stdout is parsed as stream-JSON, its stderr is captured for diagnostics.
type Worker struct {
	core.Agent

	cmd *exec.Cmd

	mu       sync.Mutex
	parser   *stream.Parser
	stderr   []string
	exitErr  error
	waitDone chan struct{}
}

// NewWorker spawns prompt as a worker agent in workdir, with an optional
// turn budget (0 means unbounded). name identifies the binary (e.g.
// "claude"); extraArgs are prepended before the prompt (rarely needed).
func NewWorker(id int, name, workdir, bin, prompt string, maxTurns int) (*Worker, error) {
	args := append([]string{"-p", prompt}, WorkerCLIFlags...)
	if maxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(maxTurns))
	}

	cmd := exec.Command(bin, args...)
	cmd.Dir = workdir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, core.ErrExecution("WORKER_SPAWN_FAILED", "failed to attach worker stdout: "+err.Error())
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, core.ErrExecution("WORKER_SPAWN_FAILED", "failed to attach worker stderr: "+err.Error())
	}
	if err := cmd.Start(); err != nil {
		return nil, core.ErrExecution("WORKER_SPAWN_FAILED", "failed to start worker: "+err.Error())
	}

	w := &Worker{
		Agent: core.Agent{
			ID: id, Name: name, WorkDir: workdir,
			Role: core.RoleWorker, ProcessStatus: core.ProcessRunning, WorkState: core.WorkWorking,
			TaskSent: true,
		},
		cmd:      cmd,
		parser:   stream.NewParser(),
		waitDone: make(chan struct{}),
	}

	go w.readStdout(stdout)
	go w.readStderr(stderr)
	go w.wait()

	return w, nil
}

func (w *Worker) readStdout(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		w.mu.Lock()
		w.parser.Feed(scanner.Text() + "\n")
		w.mu.Unlock()
	}
}

func (w *Worker) readStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w.mu.Lock()
		w.stderr = append(w.stderr, scanner.Text())
		w.mu.Unlock()
	}
}

func (w *Worker) wait() {
	w.exitErr = w.cmd.Wait()
	close(w.waitDone)
}

// TryWait polls for child exit without blocking, synthesizing a failure
// result from the exit status if the stream parser never reported
// completion (the child died without emitting a terminal result event).
func (w *Worker) TryWait() {
	select {
	case <-w.waitDone:
	default:
		return
	}
	w.ProcessStatus = core.ProcessEnded

	w.mu.Lock()
	completed := w.parser.Completed
	parserErr := w.parser.Error
	result := w.parser.Result
	w.mu.Unlock()

	if !completed && w.exitErr != nil {
		completed = true
		parserErr = "worker exited: " + w.exitErr.Error()
	}
	UpdateWorkerWorkState(&w.Agent, completed, result, parserErr)
}

// Completed reports the stream parser's completion flag directly, for
// callers that tick before the process has exited.
func (w *Worker) Completed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.parser.Completed
}

// Commits returns the commit subject lines collected for this worker's
// result, set by the caller once it has shelled out to `git log`.
func (w *Worker) SetCommits(commits []string) {
	if w.Result == nil {
		w.Result = &core.TaskResult{}
	}
	w.Result.Commits = commits
}

// LastAssistantText surfaces the worker's most recent assistant message,
// for rendering its transcript pane.
func (w *Worker) LastAssistantText() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.parser.LastAssistantText()
}

// Events returns the worker's parsed stream events for transcript
// rendering.
func (w *Worker) Events() []stream.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]stream.Event, len(w.parser.Events))
	copy(out, w.parser.Events)
	return out
}

// StderrLines returns diagnostics captured from the worker's stderr.
func (w *Worker) StderrLines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.stderr))
	copy(out, w.stderr)
	return out
}

// Close kills the child if it is still running and waits for the reaping
// goroutine to finish, so Registry.Remove can release a worker the same
// way it releases an Interactive's PTY.
func (w *Worker) Close() error {
	select {
	case <-w.waitDone:
		return nil
	default:
	}
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	<-w.waitDone
	return nil
}

