package editor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ProcessLister lists the executable names or paths of running processes
type ProcessLister interface {
	ListProcessNames(ctx context.Context) ([]string, error)
}

// SystemProcessLister asks the operating system's process table
type SystemProcessLister struct {
	GOOS string
}

func (s SystemProcessLister) command(ctx context.Context) *exec.Cmd {
	switch s.GOOS {
	case "windows":
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
			`Get-CimInstance -Query "select executablepath from win32_process where executablepath is not null" | ForEach-Object { $_.ExecutablePath }`)
	default:
		return exec.CommandContext(ctx, "ps", "-x", "-o", "comm=")
	}
}

// ListProcessNames runs the platform's process listing and returns one entry per process
func (s SystemProcessLister) ListProcessNames(ctx context.Context) ([]string, error) {
	out, err := s.command(ctx).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	return names, scanner.Err()
}
