package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Terminal runs shell commands with allow/deny checks and a timeout. It backs
// the zero-shot agent's shell tool; failures are returned as plain errors so
// the loop can surface them to the model as observations.
type Terminal struct {
	WorkingDir     string
	Allowed        []string
	Denied         []string
	Timeout        time.Duration
	AllowExecution bool
}

// Exec runs a command line if allowed by configuration and returns combined
// output.
func (t *Terminal) Exec(ctx context.Context, commandLine string) (string, error) {
	if !t.AllowExecution {
		return "", errors.New("execution disabled by configuration")
	}

	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return "", fmt.Errorf("command is required")
	}
	command, args := fields[0], fields[1:]

	if err := t.validateCommand(command); err != nil {
		return "", err
	}

	timeout := t.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, args...)
	if t.WorkingDir != "" {
		cmd.Dir = t.WorkingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		out := strings.TrimSpace(stdout.String() + stderr.String())
		if out == "" {
			return "", fmt.Errorf("command failed: %w", err)
		}
		return "", fmt.Errorf("command failed: %s", out)
	}

	out := stdout.String()
	if strings.TrimSpace(out) == "" {
		out = stderr.String()
	}
	return strings.TrimSpace(out), nil
}

func (t *Terminal) validateCommand(cmd string) error {
	for _, denied := range t.Denied {
		if cmd == denied {
			return fmt.Errorf("command %q is denied by configuration", cmd)
		}
	}
	if len(t.Allowed) == 0 {
		return nil
	}
	for _, allowed := range t.Allowed {
		if cmd == allowed {
			return nil
		}
	}
	return fmt.Errorf("command %q is not in the allowed list", cmd)
}
