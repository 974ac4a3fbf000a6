// ABOUTME: Interactive fleet and node views launched as a full-screen Bubble Tea program.
// ABOUTME: Logs go to the configured log file because the terminal belongs to the TUI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/2389-research/natdash/api"
	"github.com/2389-research/natdash/render"
	"github.com/2389-research/natdash/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func (c *cli) fleetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fleet",
		Short: "Open the interactive fleet view (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFleet(cmd)
		},
	}
}

func (c *cli) nodeCmd() *cobra.Command {
	var link string
	cmd := &cobra.Command{
		Use:   "node [NAME]",
		Short: "Open the interactive view of one node",
		Long: `Open the interactive node view, by NAME or by a fleet link such as
--link "/nodes/?name=A". The name is not checked; a node that does not exist
shows up as failed fetches in the log.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case link != "" && len(args) > 0:
				return errors.New("give either NAME or --link, not both")
			case link != "":
				return c.runView(cmd, link)
			case len(args) == 1:
				return c.runView(cmd, render.NodeLink(args[0]))
			default:
				return errors.New("node requires NAME or --link")
			}
		},
	}
	cmd.Flags().StringVar(&link, "link", "", "Fleet view link of the node (/nodes/?name=NAME)")
	return cmd
}

func (c *cli) runFleet(cmd *cobra.Command) error {
	return c.runView(cmd, "")
}

// runView starts the TUI at the fleet view, or at the node view for a
// non-empty link.
func (c *cli) runView(cmd *cobra.Command, link string) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := tea.LogToFile(cfg.LogFile, "natdash")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client := api.NewClient(cfg.BaseURL, api.WithTimeout(cfg.RequestTimeout))
	model := tui.NewAppModel(ctx, client, tui.Options{Period: cfg.RefreshPeriod}, link)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
