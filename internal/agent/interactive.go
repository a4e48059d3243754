// Package agent implements the PTY channel (C1), the stream channel (C2)'s
// worker-side wiring, and the work-state inference (C3) that the
// supervisor ticks against every agent.
package agent

import (
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/ActiveState/vt10x"
	"github.com/creack/pty"

	"github.com/cctakt/cctakt/internal/core"
)

// Interactive wraps a PTY-backed child CLI: the conductor. It owns the PTY
// master, a writer, a VT100 screen model fed by a background reader
// thread, and the last-activity timestamp the work-state machine reads.
type Interactive struct {
	core.Agent

	cmd    *exec.Cmd
	master *os.File

	mu       sync.Mutex
	screen   vt10x.Terminal
	lastSeen time.Time

	readerDone chan struct{}
}

// NewInteractive spawns cmd attached to a new PTY of size rows×cols and
// starts the background reader thread. The slave side is released back to
// the OS once the child has taken it over, per pty.Start's contract.
func NewInteractive(id int, name, workdir string, cmd *exec.Cmd, rows, cols uint16) (*Interactive, error) {
	cmd.Dir = workdir

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, core.ErrExecution("PTY_SPAWN_FAILED", "failed to start interactive agent: "+err.Error())
	}

	screen := vt10x.New(vt10x.WithSize(int(cols), int(rows)))

	ia := &Interactive{
		Agent: core.Agent{
			ID: id, Name: name, WorkDir: workdir,
			Role: core.RoleInteractive, ProcessStatus: core.ProcessRunning, WorkState: core.WorkStarting,
		},
		cmd:        cmd,
		master:     master,
		screen:     screen,
		lastSeen:   time.Now(),
		readerDone: make(chan struct{}),
	}
	go ia.pump()
	return ia, nil
}

// pump is the reader thread: reads up to 4 KiB at a time into the VT100
// parser and bumps last-activity on every non-empty read. It never
// panics, and exits cleanly on EOF or read error.
func (ia *Interactive) pump() {
	defer close(ia.readerDone)
	buf := make([]byte, 4096)
	for {
		n, err := ia.master.Read(buf)
		if n > 0 {
			ia.mu.Lock()
			_, _ = ia.screen.Write(buf[:n])
			ia.lastSeen = time.Now()
			ia.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// SendBytes is a best-effort write-then-flush; errors are swallowed. The
// supervisor detects death via child exit, not via write failures.
func (ia *Interactive) SendBytes(p []byte) {
	_, _ = ia.master.Write(p)
}

// Resize atomically updates the VT100 screen dimensions and the PTY size.
// Safe to call while the reader thread is pumping.
func (ia *Interactive) Resize(rows, cols uint16) {
	ia.mu.Lock()
	ia.screen.Resize(int(cols), int(rows))
	ia.mu.Unlock()
	_ = pty.Setsize(ia.master, &pty.Winsize{Rows: rows, Cols: cols})
}

// ScreenText returns the current screen as plain text, rows joined by
// newline.
func (ia *Interactive) ScreenText() string {
	ia.mu.Lock()
	defer ia.mu.Unlock()
	return ia.screen.String()
}

// Cell is a row-major screen cell ready for the renderer's style
// translation. vt10x exposes only char/fg/bg per cell; bold/italic/
// underline/reverse are reconstructed by the renderer from the cursor's
// reported mode where the terminal library surfaces it, not here.
type Cell struct {
	Ch     rune
	Fg, Bg vt10x.Color
}

// Cells returns a row-major snapshot of the screen for rendering.
func (ia *Interactive) Cells(rows, cols int) [][]Cell {
	ia.mu.Lock()
	defer ia.mu.Unlock()

	out := make([][]Cell, rows)
	for y := 0; y < rows; y++ {
		row := make([]Cell, cols)
		for x := 0; x < cols; x++ {
			ch, fg, bg := ia.screen.Cell(x, y)
			row[x] = Cell{Ch: ch, Fg: fg, Bg: bg}
		}
		out[y] = row
	}
	return out
}

// LastActivity returns the timestamp of the most recent non-empty read.
func (ia *Interactive) LastActivity() time.Time {
	ia.mu.Lock()
	defer ia.mu.Unlock()
	return ia.lastSeen
}

// TryWait polls the child's process status without blocking, matching the
// `try_wait` semantics the supervisor ticks against every agent.
func (ia *Interactive) TryWait() {
	if ia.cmd.ProcessState != nil {
		ia.ProcessStatus = core.ProcessEnded
		return
	}
	select {
	case <-ia.readerDone:
		// Reader saw EOF; reap without blocking further.
		_ = ia.cmd.Wait()
		ia.ProcessStatus = core.ProcessEnded
	default:
	}
}

// Close kills the reader thread by closing the master handle and reaps
// the child, in that dependency order.
func (ia *Interactive) Close() error {
	_ = ia.master.Close()
	<-ia.readerDone
	_ = ia.cmd.Wait()
	ia.ProcessStatus = core.ProcessEnded
	return nil
}
