package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
)

// DefaultXZPreset is the xz compression level used when none is given.
const DefaultXZPreset = 6

// xzWriter pipes everything written to it through an external xz process
// whose output goes to dst.
type xzWriter struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	mu      sync.Mutex
	closed  bool
	waitErr error
	waitCh  chan struct{}
}

// newXZWriter starts "xz -c -<preset>" writing to dst. Presets outside
// 0-9 fall back to DefaultXZPreset.
func newXZWriter(dst io.Writer, preset int) (*xzWriter, error) {
	if preset < 0 || preset > 9 {
		preset = DefaultXZPreset
	}

	cmd := exec.Command("xz", "-c", "-"+strconv.Itoa(preset))
	cmd.Stdout = dst
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to start xz: %w", err)
	}

	w := &xzWriter{cmd: cmd, stdin: stdin, waitCh: make(chan struct{})}
	go func() {
		w.waitErr = cmd.Wait()
		close(w.waitCh)
	}()
	return w, nil
}

func (w *xzWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, ErrClosed
	}
	return w.stdin.Write(p)
}

// Close signals EOF to xz and waits for it to finish.
func (w *xzWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	stdinErr := w.stdin.Close()
	<-w.waitCh

	if w.waitErr != nil {
		return fmt.Errorf("xz process failed: %w", w.waitErr)
	}
	if stdinErr != nil {
		return fmt.Errorf("failed to close xz stdin: %w", stdinErr)
	}
	return nil
}

// CheckXZAvailable reports whether the xz binary can be run.
func CheckXZAvailable() error {
	if err := exec.Command("xz", "--version").Run(); err != nil {
		return errors.Join(
			fmt.Errorf("xz not found: %w", err),
			errors.New("install with: apt install xz-utils (Linux) or brew install xz (macOS)"),
		)
	}
	return nil
}
