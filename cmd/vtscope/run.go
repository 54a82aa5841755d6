package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/pslog"
	"pkt.systems/vtscope"
	"pkt.systems/vtscope/core"
	"pkt.systems/vtscope/httpapi"
	"pkt.systems/vtscope/internal/appconfig"
	"pkt.systems/vtscope/internal/eventlog"
	"pkt.systems/vtscope/internal/logx"
	"pkt.systems/vtscope/internal/ptyproc"
	"pkt.systems/vtscope/internal/termio"
	"pkt.systems/vtscope/schema"
	"pkt.systems/vtscope/sshserver"
)

type runOptions struct {
	cfgPath   string
	addr      string
	record    string
	eventLog  string
	noBrowser bool
	noQR      bool
	enableSSH bool
}

var runFlags runOptions

// addRunFlags registers the session flags as persistent so replay shares
// the viewer switches with the root run command.
func addRunFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&runFlags.cfgPath, "config", "c", "", "path to config file")
	pf.StringVarP(&runFlags.addr, "addr", "a", "", "http listen address (overrides config)")
	pf.StringVar(&runFlags.eventLog, "event-log", "", "append decoded events to a JSONL file")
	pf.BoolVar(&runFlags.noBrowser, "no-browser", false, "do not open the viewer in a browser")
	pf.BoolVar(&runFlags.noQR, "no-qr", false, "do not print the viewer URL as a QR code")
	pf.BoolVar(&runFlags.enableSSH, "ssh", false, "also serve the event tail over SSH")
	cmd.Flags().StringVar(&runFlags.record, "record", "", "record raw child output to a file for later replay")
}

func runSession(cmd *cobra.Command, args []string) error {
	logger := pslog.Ctx(cmd.Context())
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	argv, err := resolveArgv(args)
	if err != nil {
		return err
	}
	logger = logx.WithCommand(logger, argv)

	pipeline := cfg.Session.Pipeline()
	pipeline.Argv = argv
	pipeline.RecordFile = runFlags.record
	sessionCfg, err := schema.NormalizeSessionConfig(pipeline)
	if err != nil {
		return err
	}

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
	printBanner(cmd.OutOrStdout(), argv, url)
	if cfg.HTTP.OpenBrowser && !runFlags.noBrowser {
		openBrowser(url, logger)
	}

	rows, cols := currentSize()
	child, err := ptyproc.Spawn(ctx, sessionCfg.Argv, "", rows, cols, logger)
	if err != nil {
		return err
	}
	defer child.Close()

	var guard *termio.RawGuard
	if termio.IsTerminal(os.Stdin) {
		guard, err = termio.EnterRaw(os.Stdin, logger)
		if err != nil {
			return err
		}
		defer guard.Restore()
		child.WatchWinch(ctx, os.Stdin)
	}

	// Ctrl-D is forwarded to the child first, then the child is killed so
	// the output stream ends even for children that ignore end of input.
	go func() {
		_ = termio.PumpInput(ctx, child, os.Stdin, func() {
			_ = child.Kill()
		})
	}()

	src := io.Reader(child)
	src = io.TeeReader(src, os.Stdout)
	var record *os.File
	if sessionCfg.RecordFile != "" {
		record, err = os.Create(sessionCfg.RecordFile)
		if err != nil {
			return fmt.Errorf("open record file: %w", err)
		}
		defer record.Close()
		src = io.TeeReader(src, record)
	}

	sess := core.NewSession(sessionCfg, hub, logger, sink)
	runErr := sess.Run(ctx, src)

	// Teardown order: input pump is dead once the child is gone, restore
	// the terminal, close the pty, and only then tell viewers the session
	// ended.
	_ = child.Wait()
	if guard != nil {
		guard.Restore()
	}
	_ = child.Close()
	sess.Finish()

	fmt.Fprintf(cmd.OutOrStdout(), "\nExited. Processed %d events\n", sess.EventCount())
	return runErr
}

// resolveArgv falls back to $SHELL when no command was given.
func resolveArgv(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		return nil, fmt.Errorf("%w: SHELL is not set; pass a command instead", schema.ErrNoShell)
	}
	return []string{shell}, nil
}

func loadRunConfig() (appconfig.Config, error) {
	cfg, err := appconfig.Load(runFlags.cfgPath)
	if err != nil {
		return appconfig.Config{}, err
	}
	if runFlags.addr != "" {
		cfg.HTTP.Addr = runFlags.addr
	}
	if runFlags.eventLog != "" {
		cfg.Session.EventLogFile = runFlags.eventLog
	}
	if runFlags.enableSSH {
		cfg.SSH.Enabled = true
	}
	return cfg, nil
}

// buildSink composes every configured mirror into the single sink the
// session consumes. Today that is just the JSONL event log.
func buildSink(cfg schema.SessionConfig, logger pslog.Logger) (core.BatchSink, func(), error) {
	if cfg.EventLogFile == "" {
		return nil, func() {}, nil
	}
	writer, err := eventlog.Open(cfg.EventLogFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return vtscope.FanoutSinks(writer), func() { _ = writer.Close() }, nil
}

func buildServer(cfg appconfig.Config, hub *core.Hub) (vtscope.Server, error) {
	serverCfg := vtscope.ServerConfig{
		HTTP: httpapi.Config{
			Addr:             cfg.HTTP.Addr,
			OpenBrowser:      cfg.HTTP.OpenBrowser,
			BacklogChunkSize: cfg.HTTP.BacklogChunkSize,
		},
		SSH: sshserver.Config{
			Enabled:     cfg.SSH.Enabled,
			Addr:        cfg.SSH.Addr,
			HostKeyPath: cfg.SSH.HostKeyPath,
		},
	}
	opts := []vtscope.ServerOption{vtscope.WithHTTP()}
	if cfg.SSH.Enabled {
		opts = append(opts, vtscope.WithSSH())
	}
	return vtscope.New(serverCfg, vtscope.ServerDeps{Hub: hub}, opts...)
}

func viewerURL(addr string) string {
	return "http://" + addr
}

func printBanner(w io.Writer, argv []string, url string) {
	fmt.Fprintf(w, "Launching %s\n", argv[0])
	fmt.Fprintf(w, "Watch at %s (Ctrl-D exits)\n", url)
	if !runFlags.noQR {
		qrterminal.GenerateHalfBlock(url, qrterminal.L, w)
	}
}

func openBrowser(url string, logger pslog.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Debug("browser open failed", "error", err)
		return
	}
	go func() { _ = cmd.Wait() }()
}

func currentSize() (uint16, uint16) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return 24, 80
	}
	return uint16(rows), uint16(cols)
}
