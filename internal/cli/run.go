package cli

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/bufbuild/connect-go"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"

	"github.com/reagent-dev/reagent/internal/rpc"
	agentrpc "github.com/reagent-dev/reagent/internal/rpc/agent"
	"github.com/reagent-dev/reagent/internal/rpc/connectjson"
)

// NewRunCmd wires the run command to stream agent steps from the daemon.
func NewRunCmd(opts *Options) *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:   "run \"<question>\"",
		Short: "Send a question to the daemon and stream reasoning steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			question := args[0]
			if strings.TrimSpace(question) == "" {
				return fmt.Errorf("question cannot be empty")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			reqBody := rpc.RunRequest{
				RunID:    uuid.NewString(),
				Variant:  variant,
				Question: question,
			}

			baseURL := daemonURL(cfg.Server.Addr)
			switch strings.ToLower(strings.TrimSpace(cfg.Server.Transport)) {
			case "ndjson":
				return runNDJSON(ctx, cmd, baseURL+"/agent/run", reqBody)
			default:
				return runConnect(ctx, cmd, baseURL+agentrpc.ConnectRunProcedure, reqBody)
			}
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "Agent variant to run (default: daemon's configured variant)")
	return cmd
}

func daemonURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func runNDJSON(ctx context.Context, cmd *cobra.Command, url string, reqBody rpc.RunRequest) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var evt rpc.RunEvent
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		if err := renderEvent(cmd, evt); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runConnect(ctx context.Context, cmd *cobra.Command, url string, reqBody rpc.RunRequest) error {
	client := connect.NewClient[rpc.RunStreamRequest, rpc.RunEvent](buildH2CClient(), url, connect.WithCodec(connectjson.Codec{}))
	stream := client.CallBidiStream(ctx)

	if err := stream.Send(&rpc.RunStreamRequest{Run: &reqBody}); err != nil {
		return err
	}

	// propagate cancellation to the daemon.
	go func() {
		<-ctx.Done()
		_ = stream.Send(&rpc.RunStreamRequest{Cancel: true, RunID: reqBody.RunID})
		_ = stream.CloseRequest()
	}()

	for {
		evt, err := stream.Receive()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := renderEvent(cmd, *evt); err != nil {
			return err
		}
	}
	_ = stream.CloseRequest()
	return stream.CloseResponse()
}

func renderEvent(cmd *cobra.Command, evt rpc.RunEvent) error {
	out := cmd.OutOrStdout()
	switch evt.Type {
	case "step":
		if evt.Thought != "" {
			fmt.Fprintf(out, "Thought %d: %s\n", evt.Step, evt.Thought)
		}
		fmt.Fprintf(out, "Action %d: %s[%s]\n", evt.Step, evt.Tool, evt.Input)
		fmt.Fprintf(out, "Observation %d: %s\n", evt.Step, evt.Observation)
	case "answer":
		fmt.Fprintf(out, "Answer: %s\n", evt.Answer)
	case "error":
		return fmt.Errorf("run failed (%s): %s", evt.ErrorKind, evt.Error)
	case "done":
	}
	return nil
}

// buildH2CClient creates an HTTP client speaking h2c for Connect bidi streams.
func buildH2CClient() *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
}
