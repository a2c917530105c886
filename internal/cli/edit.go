package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/plandeck/internal/engine"
	"github.com/roach88/plandeck/internal/session"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	URL    string
	Strict bool
	OSC52  bool
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Start an interactive edit session",
		Long: `Start an interactive edit session.

The session opens the document carried by --url, or the default template
when the link has no document. Commands are read line by line from stdin
and run one at a time; type "help" for the list.

Example:
  plandeck edit --url "$LINK"
  printf 'toggle\nset hero.title שלום\nsave\n' | plandeck edit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "entry address, optionally carrying a share token (default: base_url)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject shared documents that do not match the content schema")
	cmd.Flags().BoolVar(&opts.OSC52, "osc52", false, "copy saved links to the terminal clipboard via OSC 52")

	return cmd
}

func runEdit(opts *EditOptions, cmd *cobra.Command) error {
	logger := opts.Logger(cmd)
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	if opts.Strict {
		cfg.Strict = true
	}
	address := opts.URL
	if address == "" {
		address = cfg.BaseURL
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	ws, err := openWorkspace(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	sess, err := session.New(session.Options{
		Registry:     ws.registry,
		EntryAddress: address,
		Param:        cfg.ShareParam,
		Strict:       cfg.Strict,
		Platform:     &terminalPlatform{term: cmd.ErrOrStderr(), osc52: opts.OSC52},
		Sender:       emailSender(cfg, logger),
		Logger:       logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open session", err)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	eng := engine.New(sess, engine.WithLogger(logger))
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	// The reader goroutine is the only producer of input lines.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	f := opts.formatter(cmd)
	f.VerboseLog("session opened from %s (%s)", sess.Source(), sess.Mode())

	failures := loop(ctx, eng, f, lines)

	eng.Stop()
	runErr := <-done

	// Run has returned, so the session is ours again.
	if sess.Dirty() {
		logger.Warn("leaving with unsaved changes")
	}

	select {
	case err := <-readErr:
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read input", err)
		}
	default:
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", runErr)
	}
	if failures > 0 {
		logger.Debug("session ended with failed commands", "count", failures)
	}
	return nil
}

// loop feeds input lines to the engine until quit, end of input or
// cancellation. It returns the number of failed commands.
func loop(ctx context.Context, eng *engine.Engine, f *OutputFormatter, lines <-chan string) int {
	failures := 0
	for {
		var line string
		select {
		case <-ctx.Done():
			return failures
		case l, ok := <-lines:
			if !ok {
				return failures
			}
			line = l
		}

		verb, _ := word(line)
		if verb == "" || verb[0] == '#' {
			continue
		}

		c, err := parseLine(line)
		if errors.Is(err, errQuit) {
			return failures
		}
		if err != nil {
			failures++
			_ = f.Error("E_USAGE", err.Error(), nil)
			continue
		}

		v, err := eng.Do(ctx, c)
		switch {
		case ctx.Err() != nil:
			return failures
		case err != nil:
			failures++
			_ = replyError(f, err)
		default:
			if err := reply(f, v); err != nil {
				fmt.Fprintf(f.GetErrWriter(), "failed to write reply: %v\n", err)
			}
		}
	}
}
