package engines

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// killGrace is how long an interrupted process gets before it is killed.
const killGrace = 100 * time.Millisecond

// runCommand runs name with stdin preset to input and returns its stdout.
// When the timeout or ctx expires the process is interrupted, then killed.
func runCommand(ctx context.Context, timeout time.Duration, input string, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command(name, args...)

	// Stdin is set before start; a pipe written after start races the reader.
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s failed to start: %w", name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, strings.TrimSpace(stderr.String()))
		}
	case <-ctx.Done():
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(killGrace):
			_ = cmd.Process.Kill()
			<-done
		}
		return nil, fmt.Errorf("%s interrupted: %w", name, ctx.Err())
	}

	return stdout.Bytes(), nil
}
