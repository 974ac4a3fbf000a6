// ABOUTME: The sim command: serves an in-memory node fleet over the node API for local use.
// ABOUTME: Its default listen address is the dashboard's default base URL, so the two pair up without flags.
package main

import (
	"github.com/2389-research/natdash/nodeapi"
	"github.com/spf13/cobra"
)

func (c *cli) simCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the node API simulator",
		Long: `Run an in-memory node fleet behind the node API.

The default listen address, 127.0.0.1:80, is where the dashboard looks by
default (http://localhost:80). Binding port 80 usually needs privileges; to run
unprivileged, pick another port for both sides:

  natdash sim --listen 127.0.0.1:8080
  natdash --base-url http://127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			closeLog, err := c.routeLog(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			addr := cfg.SimAddr
			if cmd.Flags().Changed("listen") {
				addr = listen
			}

			ctx, cancel := signalContext(c.stderr)
			defer cancel()

			srv := nodeapi.NewServer(nodeapi.ServerConfig{Addr: addr}, nil)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", nodeapi.DefaultAddr, "Address to listen on")
	return cmd
}
