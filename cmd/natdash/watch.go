// ABOUTME: Headless watch loop: a refresh scheduler on a one-second ticker printing a node's snapshots.
// ABOUTME: Fetches run in their own goroutines; the countdown never waits for them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/2389-research/natdash/api"
	"github.com/2389-research/natdash/refresh"
	"github.com/2389-research/natdash/render"
	"github.com/spf13/cobra"
)

type snapshotter interface {
	Snapshot(ctx context.Context, name string) (api.NodeSnapshot, error)
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch NAME",
		Short: "Print a node's snapshot every refresh period until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, closeLog, err := c.newClient(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := signalContext(c.stderr)
			defer cancel()

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

			return watchNode(ctx, client, args[0], cfg.RefreshPeriod, ticker.C, c.stdout)
		},
	}
}

// watchNode fetches once immediately, then on every due tick, until ctx is
// done or ticks is closed. Output from fetches and the countdown never
// interleaves mid-line. Cancellation is a clean exit.
func watchNode(ctx context.Context, client snapshotter, name string, period int, ticks <-chan time.Time, out io.Writer) error {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	fetch := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := client.Snapshot(ctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("component=cli.watch action=fetch_failed node=%s err=%v", name, err)
				return
			}
			writeNodeView(out, name, render.Node(snap))
		}()
	}
	countdown := func(text string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, text)
	}

	s := refresh.NewScheduler(period, fetch, countdown)
	s.ForceRefresh()
	err := s.Run(ctx, ticks)
	wg.Wait()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
