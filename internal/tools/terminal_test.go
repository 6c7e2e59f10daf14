package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTerminalExecDisabledByDefault(t *testing.T) {
	term := &Terminal{}

	_, err := term.Exec(context.Background(), "echo hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "execution disabled")
}

func TestTerminalExecRunsAllowedCommand(t *testing.T) {
	term := &Terminal{AllowExecution: true, Allowed: []string{"echo"}}

	out, err := term.Exec(context.Background(), "echo hello world")
	require.NoError(t, err)
	require.Equal(t, "hello world", out)
}

func TestTerminalExecRejectsDeniedCommand(t *testing.T) {
	term := &Terminal{AllowExecution: true, Denied: []string{"rm"}}

	_, err := term.Exec(context.Background(), "rm -rf /")
	require.Error(t, err)
	require.Contains(t, err.Error(), "denied")
}

func TestTerminalExecRejectsOutsideAllowList(t *testing.T) {
	term := &Terminal{AllowExecution: true, Allowed: []string{"echo"}}

	_, err := term.Exec(context.Background(), "cat /etc/passwd")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not in the allowed list")
}

func TestTerminalExecRequiresCommand(t *testing.T) {
	term := &Terminal{AllowExecution: true}

	_, err := term.Exec(context.Background(), "   ")
	require.Error(t, err)
}

func TestTerminalExecTimeout(t *testing.T) {
	term := &Terminal{AllowExecution: true, Timeout: 50 * time.Millisecond}

	_, err := term.Exec(context.Background(), "sleep 5")
	require.Error(t, err)
}
