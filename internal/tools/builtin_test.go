package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reagent-dev/reagent/internal/config"
)

func TestBuildRegistryWithoutExec(t *testing.T) {
	reg, err := BuildRegistry(config.ToolsConfig{})
	require.NoError(t, err)
	require.Equal(t, []string{"Clock", "WordCount"}, reg.Names())
}

func TestBuildRegistryWithExec(t *testing.T) {
	reg, err := BuildRegistry(config.ToolsConfig{AllowExec: true, ExecTimeoutSeconds: 5})
	require.NoError(t, err)

	shell, ok := reg.Lookup("Shell")
	require.True(t, ok)
	require.NotNil(t, shell.Func)
}

func TestWordCountTool(t *testing.T) {
	out, err := WordCountTool().Func(context.Background(), "one two  three")
	require.NoError(t, err)
	require.Equal(t, "3", out)

	out, err = WordCountTool().Func(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "0", out)
}

func TestClockTool(t *testing.T) {
	out, err := ClockTool().Func(context.Background(), "ignored")
	require.NoError(t, err)
	require.Contains(t, out, "UTC")
}
