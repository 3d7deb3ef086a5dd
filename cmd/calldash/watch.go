package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/config"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/backend"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/monitor"

	"github.com/spf13/cobra"
)

type watchOptions struct {
	backendURL  string
	wsURL       string
	elderID     string
	phoneNumber string
	prompt      string
	exportDir   string
	timeout     time.Duration
}

// newWatchCmd creates the "calldash watch" subcommand.
func newWatchCmd() *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Place a call and follow its transcript",
		Long:  "Place an outbound call through the backend and print the live transcript,\ntool calls and call quality until the call ends.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := backend.NewCallClient(opts.backendURL, opts.timeout)
			dialer := backend.NewStreamDialer(opts.wsURL, 0)
			return runWatch(ctx, cmd, client, dialer, opts)
		},
	}

	cmd.Flags().StringVar(&opts.backendURL, "backend", envOr("BACKEND_URL", "http://localhost:3000"), "orchestration backend URL")
	cmd.Flags().StringVar(&opts.wsURL, "ws", envOr("BACKEND_WS_URL", "ws://localhost:3000"), "orchestration backend websocket URL")
	cmd.Flags().StringVar(&opts.elderID, "elder", "", "elder id to call")
	cmd.Flags().StringVar(&opts.phoneNumber, "phone", "", "phone number to call")
	cmd.Flags().StringVar(&opts.prompt, "prompt", config.DefaultPrompt, "opening prompt for the assistant")
	cmd.Flags().StringVar(&opts.exportDir, "export", "", "directory to write the transcript file to when the call ends")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout for placing the call")
	_ = cmd.MarkFlagRequired("elder")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

type callStarter interface {
	StartCall(ctx context.Context, req backend.StartCallRequest) (*backend.StartCallResult, error)
}

func runWatch(ctx context.Context, cmd *cobra.Command, calls callStarter, dialer monitor.StreamDialer, opts watchOptions) error {
	req := backend.StartCallRequest{
		ElderID:     opts.elderID,
		PhoneNumber: opts.phoneNumber,
		Prompt:      opts.prompt,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	result, err := calls.StartCall(ctx, req)
	if err != nil {
		return fmt.Errorf("watch: start call: %w", err)
	}

	dash := monitor.NewDashboard(dialer)
	defer dash.Close()

	changes, unsubscribe := dash.Subscribe()
	defer unsubscribe()

	err = dash.StartCall(monitor.CallMeta{
		SessionID:   result.SessionID,
		CallSid:     result.CallSid,
		ElderID:     opts.elderID,
		PhoneNumber: opts.phoneNumber,
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	out := cmd.OutOrStdout()
	printer := newTranscriptPrinter(out, DefaultTheme())

	var snap model.DashboardSnapshot
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case _, ok := <-changes:
			if !ok {
				break loop
			}
			snap = dash.Snapshot("")
			terminal := snap.Call.Status == model.CallStatusEnded || snap.Call.Status == model.CallStatusError
			printer.Render(snap, terminal)
			if terminal {
				break loop
			}
		}
	}

	snap = dash.Snapshot("")
	printer.Render(snap, true)
	printer.Summary(snap.Stats)

	if opts.exportDir != "" {
		filename, content := dash.Export()
		path := filepath.Join(opts.exportDir, filename)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("watch: export transcript: %w", err)
		}
		fmt.Fprintf(out, "Transcript written to %s\n", path)
	}

	if snap.Call.Status == model.CallStatusError {
		return fmt.Errorf("watch: realtime stream of session %s failed", snap.Call.SessionID)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
