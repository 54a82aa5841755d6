package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/vtscope/core"
	"pkt.systems/vtscope/internal/termio"
	"pkt.systems/vtscope/schema"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "decode a previously recorded output stream",
		Long: `Replay decodes a raw output capture (see --record) and serves the
resulting events to viewers exactly as a live session would. Nothing is
written back to a terminal; the session stays open for late viewers
until Ctrl-D is pressed.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args[0])
		},
	}
	return cmd
}

func runReplay(cmd *cobra.Command, path string) error {
	logger := pslog.Ctx(cmd.Context())
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	pipeline := cfg.Session.Pipeline()
	pipeline.ReplayFile = path
	sessionCfg, err := schema.NormalizeSessionConfig(pipeline)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open replay file: %w", err)
	}
	defer file.Close()

	hub := core.NewHub(sessionCfg.SubscriberDepth, logger)
	sink, closeSink, err := buildSink(sessionCfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	server, err := buildServer(cfg, hub)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = server.Stop(stopCtx)
	}()

	url := viewerURL(cfg.HTTP.Addr)
	fmt.Fprintf(cmd.OutOrStdout(), "Replaying %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Watch at %s (Ctrl-D exits)\n", url)
	if cfg.HTTP.OpenBrowser && !runFlags.noBrowser {
		openBrowser(url, logger)
	}

	// The pipe keeps the stream open after the recording is drained so
	// the hub accepts late subscribers until the operator presses Ctrl-D.
	pr, pw := io.Pipe()
	go func() {
		termio.WaitExit(os.Stdin)
		pw.Close()
	}()

	sess := core.NewSession(sessionCfg, hub, logger, sink)
	runErr := sess.Run(ctx, io.MultiReader(file, pr))
	sess.Finish()

	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d events\n", sess.EventCount())
	return runErr
}
