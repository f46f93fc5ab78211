package editor

import (
	"errors"
	"fmt"
	"os/exec"
)

// Spawner starts a process without waiting for it
type Spawner interface {
	SpawnDetached(name string, args []string) error
}

// ExecSpawner starts editors with os/exec in their own process group
type ExecSpawner struct{}

// SpawnDetached starts name and reaps it in the background. A missing binary
// yields ErrEditorNotFound.
func (ExecSpawner) SpawnDetached(name string, args []string) error {
	cmd := exec.Command(name, args...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrEditorNotFound, name)
		}
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
