package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ib-77/ropause/pkg/rop"
	"github.com/ib-77/ropause/pkg/rop/core"
	"github.com/ib-77/ropause/pkg/rop/pausable"
)

func newRunCmd() *cobra.Command {
	cfg := defaultRunConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Stream 0..count-1, pausing after a number of values",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveRunConfig(cmd, configPath, cfg)
			if err != nil {
				return err
			}
			if err := resolved.validate(); err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), verbose)
			total, err := runStream(cmd.Context(), cmd.OutOrStdout(), logger, resolved)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to an ini file with a [stream] section")
	cmd.Flags().IntVar(&cfg.count, "count", cfg.count, "Number of values to produce")
	cmd.Flags().IntVar(&cfg.pauseAfter, "pause-after", cfg.pauseAfter, "Pause after this many values (0 disables)")
	cmd.Flags().DurationVar(&cfg.hold, "hold", cfg.hold, "How long to stay paused")
	cmd.Flags().BoolVar(&cfg.initiallyPaused, "initially-paused", cfg.initiallyPaused, "Create the stream paused")
	return cmd
}

// resolveRunConfig layers the config file under explicitly set flags.
func resolveRunConfig(cmd *cobra.Command, path string, flags runConfig) (runConfig, error) {
	if path == "" {
		return flags, nil
	}

	cfg, err := loadRunConfig(path, defaultRunConfig())
	if err != nil {
		return flags, err
	}

	changed := cmd.Flags().Changed
	if changed("count") {
		cfg.count = flags.count
	}
	if changed("pause-after") {
		cfg.pauseAfter = flags.pauseAfter
	}
	if changed("hold") {
		cfg.hold = flags.hold
	}
	if changed("initially-paused") {
		cfg.initiallyPaused = flags.initiallyPaused
	}
	return cfg, nil
}

func runStream(ctx context.Context, w io.Writer, logger *slog.Logger, cfg runConfig) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = core.WithLogger(ctx, logger)

	next := 0
	producer := func() (int, error) {
		if next >= cfg.count {
			return 0, rop.ErrEnd
		}
		v := next
		next++
		return v, nil
	}

	s, err := pausable.New[int](ctx, producer, pausable.WithInitiallyPaused(cfg.initiallyPaused))
	if err != nil {
		return 0, err
	}

	var (
		mu        sync.Mutex
		timers    []*time.Timer
		delivered int
	)
	resumeLater := func() {
		mu.Lock()
		timers = append(timers, time.AfterFunc(cfg.hold, s.Resume))
		mu.Unlock()
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	if cfg.initiallyPaused {
		fmt.Fprintf(w, "paused for %s before start\n", cfg.hold)
		resumeLater()
	}

	s.Subscribe(pausable.Observer[int]{
		OnNext: func(v int) {
			mu.Lock()
			delivered++
			n := delivered
			mu.Unlock()

			fmt.Fprintf(w, "value: %d\n", v)
			if n == cfg.pauseAfter {
				s.Pause()
				fmt.Fprintf(w, "paused after %d values for %s\n", n, cfg.hold)
				resumeLater()
			}
		},
	})

	err = s.Wait(ctx)
	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		return delivered, err
	}
	logger.Debug("pausedemo: stream finished", "stream", s.ID().String(), "delivered", delivered)
	return delivered, nil
}
