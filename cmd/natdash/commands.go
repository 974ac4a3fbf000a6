// ABOUTME: One-shot node API commands: list, register, show, and the direct/nat/chat operations.
// ABOUTME: Each command resolves config, performs its requests, and prints rendered lines to stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/2389-research/natdash/api"
	"github.com/2389-research/natdash/render"
	"github.com/spf13/cobra"
)

// withClient wraps a command body with config resolution and log routing.
func (c *cli) withClient(body func(ctx context.Context, client *api.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, _, closeLog, err := c.newClient(cmd)
		if err != nil {
			return err
		}
		defer closeLog()
		return body(cmd.Context(), client, args)
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the registered node names and their view links",
		Args:  cobra.NoArgs,
		RunE: c.withClient(func(ctx context.Context, client *api.Client, args []string) error {
			return printFleet(ctx, client, c.stdout)
		}),
	}
}

func (c *cli) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register NAME PORT",
		Short: "Register a node, then print the fleet",
		Long: `Register asks the node host to start a node listening on PORT.

NAME must be letters and digits only; anything else is rejected before a
request is sent. PORT is parsed leniently: "8080abc" becomes 8080, and input
with no leading digits registers with a null port.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := api.CheckName(args[0]); err != nil {
				return err
			}
			return c.withClient(func(ctx context.Context, client *api.Client, args []string) error {
				req := api.RegisterRequest{Name: args[0], Port: api.ParsePort(args[1])}
				regErr := client.RegisterNode(ctx, req)
				if regErr != nil {
					log.Printf("component=cli action=register_failed name=%s err=%v", req.Name, regErr)
				}
				if err := printFleet(ctx, client, c.stdout); err != nil {
					return err
				}
				return regErr
			})(cmd, args)
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print one node's rendered snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: c.withClient(func(ctx context.Context, client *api.Client, args []string) error {
			return printNode(ctx, client, args[0], c.stdout)
		}),
	}
}

func (c *cli) directCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "direct NAME ADDR",
		Short: "Ask a node to connect directly to host:port",
		Args:  cobra.ExactArgs(2),
		RunE: c.withClient(func(ctx context.Context, client *api.Client, args []string) error {
			return c.sendThenShow(ctx, client, args[0], api.Direct(args[1]))
		}),
	}
}

func (c *cli) natCmd() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "nat NAME DEST",
		Short: "Ask a node to punch through to a destination node",
		Args:  cobra.ExactArgs(2),
		RunE: c.withClient(func(ctx context.Context, client *api.Client, args []string) error {
			return c.sendThenShow(ctx, client, args[0], api.Nat(args[1], local))
		}),
	}
	cmd.Flags().BoolVar(&local, "local", false, "Use the destination's local address")
	return cmd
}

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat NAME DEST TEXT",
		Short: "Send a chat message from one node to another",
		Args:  cobra.ExactArgs(3),
		RunE: c.withClient(func(ctx context.Context, client *api.Client, args []string) error {
			return c.sendThenShow(ctx, client, args[0], api.Chat(args[1], args[2]))
		}),
	}
}

// sendThenShow posts one envelope and prints the node's refreshed snapshot.
// A failed send is reported after the snapshot is printed.
func (c *cli) sendThenShow(ctx context.Context, client *api.Client, name string, env api.OperationEnvelope) error {
	sendErr := client.Send(ctx, name, env)
	if sendErr != nil {
		log.Printf("component=cli action=%s_failed node=%s err=%v", env.Op, name, sendErr)
	}
	if err := printNode(ctx, client, name, c.stdout); err != nil {
		return err
	}
	return sendErr
}

func printFleet(ctx context.Context, client *api.Client, w io.Writer) error {
	names, err := client.ListNodes(ctx)
	if err != nil {
		return err
	}
	for _, entry := range render.FleetEntries(names) {
		fmt.Fprintf(w, "%s  %s\n", entry.Name, entry.Href)
	}
	return nil
}

func printNode(ctx context.Context, client *api.Client, name string, w io.Writer) error {
	snap, err := client.Snapshot(ctx, name)
	if err != nil {
		return err
	}
	writeNodeView(w, name, render.Node(snap))
	return nil
}

// writeNodeView prints every panel of a node view as an indented section.
func writeNodeView(w io.Writer, name string, view render.NodeView) {
	fmt.Fprintln(w, render.Title(name))
	fmt.Fprintln(w, view.Local)
	writeSection(w, "Neighbors", view.Neighbors)
	writeSection(w, "Addresses", view.Addresses)
	writeSection(w, "Routing", view.Routing)
	writeSection(w, "Chat", view.Chat)
}

func writeSection(w io.Writer, title string, lines []string) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(lines) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
