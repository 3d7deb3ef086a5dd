package main

import (
	"fmt"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/config"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/handler"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/proc"
	"github.com/zeromicro/go-zero/rest"
)

const defaultConfigFile = "etc/calldash-api.yaml"

// newServeCmd creates the "calldash serve" subcommand.
func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Long:  "Start the HTTP API that places calls and exposes the live dashboard\nof the call being monitored, including a websocket push stream.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var c config.Config
			if err := conf.Load(configFile, &c, conf.UseEnv()); err != nil {
				return fmt.Errorf("serve: load config %s: %w", configFile, err)
			}

			server := rest.MustNewServer(c.RestConf, rest.WithCors())
			defer server.Stop()

			ctx := svc.NewServiceContext(c)
			proc.AddShutdownListener(ctx.Close)
			defer ctx.Close()

			handler.RegisterHandlers(server, ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at %s:%d...\n", c.Host, c.Port)
			server.Start()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "f", defaultConfigFile, "the config file")
	return cmd
}
