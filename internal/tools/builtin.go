// Package tools provides builtin capabilities offered to the zero-shot agent
// variant from daemon configuration.
package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reagent-dev/reagent/internal/agent"
	"github.com/reagent-dev/reagent/internal/config"
)

// BuildRegistry assembles the builtin tool registry from configuration.
func BuildRegistry(cfg config.ToolsConfig) (*agent.ToolRegistry, error) {
	tools := []agent.Tool{ClockTool(), WordCountTool()}

	if cfg.AllowExec {
		term := &Terminal{
			WorkingDir:     cfg.WorkingDir,
			Allowed:        cfg.AllowedCommands,
			Denied:         cfg.DeniedCommands,
			Timeout:        time.Duration(cfg.ExecTimeoutSeconds) * time.Second,
			AllowExecution: true,
		}
		tools = append(tools, agent.Tool{
			Name:        "Shell",
			Description: "Run a shell command and return its output.",
			Func:        term.Exec,
		})
	}

	return agent.NewToolRegistry(tools...)
}

// ClockTool reports the current time; input is ignored.
func ClockTool() agent.Tool {
	return agent.Tool{
		Name:        "Clock",
		Description: "Return the current date and time in UTC.",
		Func: func(ctx context.Context, _ string) (string, error) {
			return time.Now().UTC().Format(time.RFC1123), nil
		},
	}
}

// WordCountTool counts words in its input.
func WordCountTool() agent.Tool {
	return agent.Tool{
		Name:        "WordCount",
		Description: "Count the words in the given text.",
		Func: func(ctx context.Context, input string) (string, error) {
			return fmt.Sprintf("%d", len(strings.Fields(input))), nil
		},
	}
}
